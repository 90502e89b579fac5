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

// Package relation classifies relational and equality comparisons into a
// small closed algebra of four direction/strictness combinations, and
// derives the bound direction a comparison imposes on a tracked variable by
// composing the classification with linear normalization.
package relation

import (
	"go/token"

	"go.uber.org/entail/ir"
	"go.uber.org/entail/linear"
	"go.uber.org/entail/typebounds"
)

// Direction is the sense of a relational comparison, read left to right:
// `lhs Direction rhs`. For a bound derived on a variable, Greater means the
// variable is bounded from below and Lesser from above.
type Direction uint8

const (
	// Greater is the `>` sense.
	Greater Direction = iota
	// Lesser is the `<` sense.
	Lesser
)

// Strictness distinguishes `<` from `<=`.
type Strictness uint8

const (
	// Strict excludes equality.
	Strict Strictness = iota
	// Nonstrict includes equality.
	Nonstrict
)

// A Rel is one of the four elements of the comparison algebra.
type Rel struct {
	Dir    Direction
	Strict Strictness
}

// Swap reflects the relation across its operands: direction negates,
// strictness is unchanged. Swap is an involution.
func (r Rel) Swap() Rel {
	r.Dir = r.Dir.negate()
	return r
}

// NegateBranch derives the relation that holds when the comparison
// evaluates false: `not (x < y)` is `x >= y`, so direction and strictness
// negate simultaneously. NegateBranch is an involution and commutes with
// Swap.
func (r Rel) NegateBranch() Rel {
	r.Dir = r.Dir.negate()
	if r.Strict == Strict {
		r.Strict = Nonstrict
	} else {
		r.Strict = Strict
	}
	return r
}

func (d Direction) negate() Direction {
	if d == Greater {
		return Lesser
	}
	return Greater
}

// String renders the relation as its operator spelling.
func (r Rel) String() string {
	switch r {
	case Rel{Dir: Greater, Strict: Strict}:
		return ">"
	case Rel{Dir: Greater, Strict: Nonstrict}:
		return ">="
	case Rel{Dir: Lesser, Strict: Strict}:
		return "<"
	}
	return "<="
}

// Classify decomposes a relational comparison (<, <=, >, >=) into its two
// operands, peeled of parentheses and widening conversions, and the relation
// of the left operand to the right one.
func Classify(g *ir.Graph, cmp ir.ExprID) (lhs, rhs ir.ExprID, rel Rel, ok bool) {
	b, isBin := g.Expr(g.Unparen(cmp)).(*ir.Binary)
	if !isBin {
		return 0, 0, Rel{}, false
	}
	switch b.Op {
	case token.LSS:
		rel = Rel{Dir: Lesser, Strict: Strict}
	case token.LEQ:
		rel = Rel{Dir: Lesser, Strict: Nonstrict}
	case token.GTR:
		rel = Rel{Dir: Greater, Strict: Strict}
	case token.GEQ:
		rel = Rel{Dir: Greater, Strict: Nonstrict}
	default:
		return 0, 0, Rel{}, false
	}
	return peelConversions(g, b.X), peelConversions(g, b.Y), rel, true
}

// ClassifyEquality decomposes an equality comparison (==, !=) into its two
// operands and whether the operator tests for equality.
func ClassifyEquality(g *ir.Graph, cmp ir.ExprID) (lhs, rhs ir.ExprID, isEquals bool, ok bool) {
	b, isBin := g.Expr(g.Unparen(cmp)).(*ir.Binary)
	if !isBin || (b.Op != token.EQL && b.Op != token.NEQ) {
		return 0, 0, false, false
	}
	return peelConversions(g, b.X), peelConversions(g, b.Y), b.Op == token.EQL, true
}

// peelConversions resolves the implicit-conversion chain on an operand:
// parentheses and widening conversions are transparent for classification.
func peelConversions(g *ir.Graph, e ir.ExprID) ir.ExprID {
	for {
		e = g.Unparen(e)
		conv, ok := g.Expr(e).(*ir.Conv)
		if !ok || !typebounds.Widens(g.TypeOf(conv.X), g.TypeOf(e)) {
			return e
		}
		e = conv.X
	}
}

// BoundFor reports the direction and strictness of the bound that holds for
// variable v when the comparison cmp evaluates to the given branch. It
// succeeds iff one side of cmp normalizes to a linear form in v; a negative
// coefficient flips the direction, since multiplying an inequality by a
// negative number reverses it. Only the existence and direction of the
// bound is established here; computing the numeric bound value is a
// downstream concern.
func BoundFor(g *ir.Graph, cmp ir.ExprID, v ir.VarID, branch bool) (Rel, bool) {
	lhs, rhs, rel, ok := Classify(g, cmp)
	if !ok {
		return Rel{}, false
	}
	form, ok := linear.Normalize(g, lhs, v)
	if !ok {
		if form, ok = linear.Normalize(g, rhs, v); !ok {
			return Rel{}, false
		}
		rel = rel.Swap()
	}
	if !branch {
		rel = rel.NegateBranch()
	}
	if form.P < 0 {
		rel.Dir = rel.Dir.negate()
	}
	return rel, true
}
