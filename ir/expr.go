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

package ir

import (
	"go/constant"
	"go/token"
)

// An Expr is a node in the expression arena of a Graph. The set of node kinds
// is closed: consumers are expected to exhaustively type-switch over them.
// Children are referenced by ExprID handles into the same arena, never by
// direct pointers, so the graph stays cycle-free at the Go object level.
type Expr interface {
	isExpr()
}

// A VarRef is a read of an SSA variable.
type VarRef struct {
	Var VarID
}

// A Lit is a literal constant. A nil Value denotes the untyped nil literal
// (mirroring go/types, where untyped nil carries no constant value). IsChar
// distinguishes character literals from plain integer literals, since
// go/constant folds both to constant.Int.
type Lit struct {
	Value  constant.Value
	IsChar bool
}

// A ConstRef is a reference to a named constant. Value is the folded constant
// value if the declaration is visible, or nil for an opaque enum-style member
// declared elsewhere; opaque members still compare equal by qualified name.
type ConstRef struct {
	Name  string
	Value constant.Value
}

// A Binary is a binary operation with a go/token operator.
type Binary struct {
	Op   token.Token
	X, Y ExprID
}

// A Unary is a unary operation (token.ADD, token.SUB, token.NOT).
type Unary struct {
	Op token.Token
	X  ExprID
}

// A Paren is an explicitly parenthesized expression.
type Paren struct {
	X ExprID
}

// A Cond is a conditional selection `If ? Then : Else`. Go has no ternary
// operator; these nodes are produced by the frontend for recognized ternary
// helper calls and directly by test fixtures.
type Cond struct {
	If, Then, Else ExprID
}

// A Conv is a value-preserving or truncating conversion of X to the type
// recorded for the Conv node itself (see Graph.TypeOf).
type Conv struct {
	X ExprID
}

// A Call is a function call. Fun is the fully qualified function name
// (package path plus name, or path.Recv.Name for methods), which is what the
// hook layer matches against.
type Call struct {
	Fun  string
	Args []ExprID
}

// A Case is a guard corresponding to one clause of a multi-way branch: it
// evaluates to true iff the switch tag equals one of Values (or, for the
// default clause, iff no sibling clause matched).
type Case struct {
	Switch  SwitchID
	Values  []ExprID
	Default bool
}

// An Opaque stands for a source expression the builder could not interpret
// (a field read, an index expression, an arbitrary call result). Variables
// defined from Opaque nodes are treated as possibly holding unrepresentable
// values and are excluded from equality reasoning.
type Opaque struct{}

func (*VarRef) isExpr()   {}
func (*Lit) isExpr()      {}
func (*ConstRef) isExpr() {}
func (*Binary) isExpr()   {}
func (*Unary) isExpr()    {}
func (*Paren) isExpr()    {}
func (*Cond) isExpr()     {}
func (*Conv) isExpr()     {}
func (*Call) isExpr()     {}
func (*Case) isExpr()     {}
func (*Opaque) isExpr()   {}
