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

// Package linear rewrites arithmetic expressions into the canonical form
// p*v + q with respect to one tracked variable v. Only addition, binary and
// unary minus, unary plus, multiplication by a compile-time numeric
// constant, widening conversions, and parentheses are admitted; any other
// operator anywhere in the tree makes normalization fail for the whole
// expression rather than produce an unsound form.
package linear

import (
	"go/constant"
	"go/token"
	"math"

	"go.uber.org/entail/ir"
	"go.uber.org/entail/lattice"
	"go.uber.org/entail/typebounds"
)

// A Form is the canonical linear shape p*v + q of an expression with respect
// to a tracked variable. P is guaranteed non-zero and finite.
type Form struct {
	P, Q float64
}

// Normalize rewrites expression e into Form such that e == P*v + Q
// algebraically, or reports failure. A top-level coefficient of zero, NaN,
// or infinity is reported as failure, never as a degenerate form.
func Normalize(g *ir.Graph, e ir.ExprID, v ir.VarID) (Form, bool) {
	f, ok := normalize(g, e, v)
	if !ok || f.P == 0 || math.IsNaN(f.P) || math.IsInf(f.P, 0) {
		return Form{}, false
	}
	return f, true
}

// normalize applies the rewrite rules bottom-up.
func normalize(g *ir.Graph, e ir.ExprID, v ir.VarID) (Form, bool) {
	switch n := g.Expr(e).(type) {
	case *ir.VarRef:
		if n.Var == v {
			return Form{P: 1, Q: 0}, true
		}
	case *ir.Paren:
		return normalize(g, n.X, v)
	case *ir.Unary:
		switch n.Op {
		case token.ADD:
			return normalize(g, n.X, v)
		case token.SUB:
			if f, ok := normalize(g, n.X, v); ok {
				return Form{P: -f.P, Q: -f.Q}, true
			}
		}
	case *ir.Conv:
		// Only a widening conversion preserves the linear relationship: a
		// conversion that could truncate breaks it even when lossless for
		// the particular runtime value.
		if typebounds.Widens(g.TypeOf(n.X), g.TypeOf(e)) {
			return normalize(g, n.X, v)
		}
	case *ir.Binary:
		return normalizeBinary(g, n, v)
	}
	return Form{}, false
}

func normalizeBinary(g *ir.Graph, n *ir.Binary, v ir.VarID) (Form, bool) {
	switch n.Op {
	case token.ADD:
		if c, ok := constOf(g, n.X); ok {
			if f, ok := normalize(g, n.Y, v); ok {
				return Form{P: f.P, Q: c + f.Q}, true
			}
		}
		if c, ok := constOf(g, n.Y); ok {
			if f, ok := normalize(g, n.X, v); ok {
				return Form{P: f.P, Q: f.Q + c}, true
			}
		}
	case token.SUB:
		if c, ok := constOf(g, n.X); ok {
			if f, ok := normalize(g, n.Y, v); ok {
				return Form{P: -f.P, Q: c - f.Q}, true
			}
		}
		if c, ok := constOf(g, n.Y); ok {
			if f, ok := normalize(g, n.X, v); ok {
				return Form{P: f.P, Q: f.Q - c}, true
			}
		}
	case token.MUL:
		if c, ok := constOf(g, n.X); ok {
			if f, ok := normalize(g, n.Y, v); ok {
				return Form{P: c * f.P, Q: c * f.Q}, true
			}
		}
		if c, ok := constOf(g, n.Y); ok {
			if f, ok := normalize(g, n.X, v); ok {
				return Form{P: f.P * c, Q: f.Q * c}, true
			}
		}
	}
	return Form{}, false
}

// constOf evaluates a compile-time numeric constant sub-expression to a
// float, or reports that the sub-expression is not such a constant.
func constOf(g *ir.Graph, e ir.ExprID) (float64, bool) {
	cv, ok := lattice.FoldConst(g, e)
	if !ok {
		return 0, false
	}
	switch cv.Kind() {
	case constant.Int, constant.Float:
		f, _ := constant.Float64Val(cv)
		return f, true
	}
	return 0, false
}
