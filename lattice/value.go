//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lattice implements the closed, finite lattice of abstract constant
// values used for equality reasoning: nil, integers, characters, strings,
// and enum-style named constants. Every literal or constant-foldable
// expression of the program maps to at most one lattice element; expressions
// outside the lattice simply produce no element, never an approximate one.
package lattice

import (
	"fmt"
	"go/constant"
	"go/token"

	"go.uber.org/entail/ir"
	"go.uber.org/entail/typebounds"
)

// Kind tags the variant of a Value.
type Kind uint8

const (
	// KindNull is the nil constant.
	KindNull Kind = iota + 1
	// KindInt is an integer constant, stored exactly as an int64.
	KindInt
	// KindChar is a character constant.
	KindChar
	// KindStr is a string constant.
	KindStr
	// KindEnum is an opaque named constant, identified by qualified name.
	KindEnum
)

// A Value is one element of the lattice. Two Values are equal iff they have
// the same Kind and the same payload; the struct is directly comparable.
type Value struct {
	Kind Kind
	// I holds the payload for KindInt and KindChar (the code point).
	I int64
	// S holds the payload for KindStr and KindEnum (the qualified name).
	S string
}

// Null returns the nil element.
func Null() Value { return Value{Kind: KindNull} }

// Int returns the integer element for i.
func Int(i int64) Value { return Value{Kind: KindInt, I: i} }

// Char returns the character element for r.
func Char(r rune) Value { return Value{Kind: KindChar, I: int64(r)} }

// Str returns the string element for s.
func Str(s string) Value { return Value{Kind: KindStr, S: s} }

// Enum returns the element for the named constant with the given qualified
// name.
func Enum(name string) Value { return Value{Kind: KindEnum, S: name} }

// Eq reports structural equality of two lattice elements.
func (v Value) Eq(o Value) bool { return v == o }

// String renders the element for debugging and diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "nil"
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindChar:
		return fmt.Sprintf("%q", rune(v.I))
	case KindStr:
		return fmt.Sprintf("%q", v.S)
	case KindEnum:
		return v.S
	}
	return "<invalid>"
}

// Distinct reports whether two lattice elements denote provably different
// runtime values. This is stronger than !a.Eq(b): elements of unrelated
// kinds (say an enum member and an integer) are unequal as lattice elements
// yet nothing guarantees their runtime values differ, so they are not
// distinct. Characters and integers share a numeric domain and compare by
// code point.
func Distinct(a, b Value) bool {
	if a == b {
		return false
	}
	if a.Kind == KindNull || b.Kind == KindNull {
		// nil is distinct from every concrete constant and enum member.
		return true
	}
	numeric := func(k Kind) bool { return k == KindInt || k == KindChar }
	switch {
	case numeric(a.Kind) && numeric(b.Kind):
		return a.I != b.I
	case a.Kind == KindStr && b.Kind == KindStr:
		return a.S != b.S
	case a.Kind == KindEnum && b.Kind == KindEnum:
		// Distinct members of an enumeration are distinct values.
		return a.S != b.S
	}
	return false
}

// Representative returns a program expression that evaluates to v. The
// mapping from expressions to lattice elements is many-to-one, so this is
// one canonical inverse, used to re-enter syntactic matching.
func (v Value) Representative() ir.Expr {
	switch v.Kind {
	case KindNull:
		return &ir.Lit{Value: nil}
	case KindInt:
		return &ir.Lit{Value: constant.MakeInt64(v.I)}
	case KindChar:
		return &ir.Lit{Value: constant.MakeInt64(v.I), IsChar: true}
	case KindStr:
		return &ir.Lit{Value: constant.MakeString(v.S)}
	case KindEnum:
		return &ir.ConstRef{Name: v.S}
	}
	return nil
}

// ValueOf returns the unique lattice element for a literal or
// constant-foldable expression, or false if the expression is outside the
// lattice. It never approximates: an integer constant that does not fit an
// int64 exactly is a miss, not a rounded element.
func ValueOf(g *ir.Graph, e ir.ExprID) (Value, bool) {
	e = g.Unparen(e)
	switch n := g.Expr(e).(type) {
	case *ir.Lit:
		if n.Value == nil {
			return Null(), true
		}
		return fromConstant(n.Value, n.IsChar)
	case *ir.ConstRef:
		if n.Value == nil {
			return Enum(n.Name), true
		}
		return fromConstant(n.Value, false)
	case *ir.Conv:
		// A conversion of a constant stays in the lattice only when the
		// target type can represent the folded value; otherwise the runtime
		// value would be truncated and must not be given a lattice element.
		inner, ok := ValueOf(g, n.X)
		if !ok {
			return Value{}, false
		}
		if inner.Kind == KindInt || inner.Kind == KindChar {
			if t := g.TypeOf(e); t != nil && !typebounds.Contains(t, inner.I) {
				return Value{}, false
			}
		}
		return inner, true
	case *ir.Unary, *ir.Binary:
		if cv, ok := fold(g, e); ok {
			return fromConstant(cv, false)
		}
	}
	return Value{}, false
}

// fromConstant maps a folded go/constant value into the lattice.
func fromConstant(cv constant.Value, isChar bool) (Value, bool) {
	switch cv.Kind() {
	case constant.Int:
		i, exact := constant.Int64Val(cv)
		if !exact {
			return Value{}, false
		}
		if isChar {
			return Char(rune(i)), true
		}
		return Int(i), true
	case constant.String:
		return Str(constant.StringVal(cv)), true
	}
	// Booleans are deliberately absent from the lattice: boolean literals
	// are peeled syntactically by the implication engine. Floats and complex
	// values are not tracked at all.
	return Value{}, false
}

// fold constant-folds an arithmetic expression built from literals and named
// constants, or reports failure.
func fold(g *ir.Graph, e ir.ExprID) (constant.Value, bool) {
	e = g.Unparen(e)
	switch n := g.Expr(e).(type) {
	case *ir.Lit:
		if n.Value == nil {
			return nil, false
		}
		return n.Value, true
	case *ir.ConstRef:
		if n.Value == nil {
			return nil, false
		}
		return n.Value, true
	case *ir.Unary:
		x, ok := fold(g, n.X)
		if !ok {
			return nil, false
		}
		return safeUnaryOp(n.Op, x)
	case *ir.Binary:
		x, ok := fold(g, n.X)
		if !ok {
			return nil, false
		}
		y, ok := fold(g, n.Y)
		if !ok {
			return nil, false
		}
		return safeBinaryOp(x, n.Op, y)
	}
	return nil, false
}

// safeUnaryOp applies a unary operator via go/constant, converting its
// panics on unsupported operand kinds into a fold failure.
func safeUnaryOp(op token.Token, x constant.Value) (v constant.Value, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	res := constant.UnaryOp(op, x, 0)
	if res.Kind() == constant.Unknown {
		return nil, false
	}
	return res, true
}

// safeBinaryOp applies a binary operator via go/constant, converting its
// panics (unsupported kinds, division by zero) into a fold failure.
func safeBinaryOp(x constant.Value, op token.Token, y constant.Value) (v constant.Value, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	res := constant.BinaryOp(x, op, y)
	if res.Kind() == constant.Unknown {
		return nil, false
	}
	return res, true
}

// FoldConst exposes constant folding over the expression arena for sibling
// packages: it returns the folded go/constant value of an expression built
// purely from literals and visible named constants.
func FoldConst(g *ir.Graph, e ir.ExprID) (constant.Value, bool) {
	return fold(g, e)
}
