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

package implication

import (
	"go/constant"
	"go/token"

	"go.uber.org/entail/ir"
	"go.uber.org/entail/lattice"
)

// An atom is a guard together with the truth value the hypothesis forces on
// it. The peeling pass turns one hypothesis `g1 == b1` into the closure of
// atoms derivable by structural rules alone.
type atom struct {
	expr ir.ExprID // always unparenthesized
	val  bool
}

// _maxPeelDepth caps structural peeling. Guard expressions are finite and
// SSA definition chains acyclic outside phis, so the cap only guards
// against pathological inputs.
const _maxPeelDepth = 64

// forcedAtoms computes every guard whose value is forced by `g == b`
// through the tier-1 structural rules. The variable-read rule is restricted
// to a single definition hop at TierSyntactic; higher tiers follow
// definition chains through intermediate temporaries.
func (e *Engine) forcedAtoms(g ir.ExprID, b bool, tier Tier) []atom {
	varHops := 1
	if tier >= TierSSA {
		varHops = _maxPeelDepth
	}
	var atoms []atom
	seen := make(map[atom]bool)
	e.peel(g, b, varHops, _maxPeelDepth, &atoms, seen)
	return atoms
}

func (e *Engine) peel(g ir.ExprID, b bool, varHops, depth int, atoms *[]atom, seen map[atom]bool) {
	if depth == 0 {
		return
	}
	g = e.graph.Unparen(g)
	a := atom{expr: g, val: b}
	if seen[a] {
		return
	}
	seen[a] = true
	*atoms = append(*atoms, a)

	switch n := e.graph.Expr(g).(type) {
	case *ir.Unary:
		if n.Op == token.NOT {
			e.peel(n.X, !b, varHops, depth-1, atoms, seen)
		}
	case *ir.Binary:
		switch n.Op {
		case token.LAND, token.AND:
			// A conjunction evaluating true forces each operand true.
			if b {
				e.peel(n.X, true, varHops, depth-1, atoms, seen)
				e.peel(n.Y, true, varHops, depth-1, atoms, seen)
			}
		case token.LOR, token.OR:
			// A disjunction evaluating false forces each operand false.
			if !b {
				e.peel(n.X, false, varHops, depth-1, atoms, seen)
				e.peel(n.Y, false, varHops, depth-1, atoms, seen)
			}
		case token.EQL, token.NEQ:
			// Comparison against a boolean literal: XOR-fold the observed
			// branch with the literal and the comparison's polarity to get
			// the forced value of the other operand.
			if lit, ok := e.boolLit(n.X); ok {
				e.peel(n.Y, foldBoolTest(b, lit, n.Op), varHops, depth-1, atoms, seen)
			} else if lit, ok := e.boolLit(n.Y); ok {
				e.peel(n.X, foldBoolTest(b, lit, n.Op), varHops, depth-1, atoms, seen)
			}
		}
	case *ir.Cond:
		e.peelCond(n, b, varHops, depth, atoms, seen)
	case *ir.Call:
		// A precondition-check helper asserts its condition argument's
		// truth value outward unchanged.
		if i, ok := e.hooks.PreconditionArg(n.Fun, len(n.Args)); ok {
			e.peel(n.Args[i], b, varHops, depth-1, atoms, seen)
		}
	case *ir.VarRef:
		// A bare read of a variable carries the value of its (non-phi,
		// non-conditional) defining update.
		if varHops > 0 {
			v := e.graph.Var(n.Var)
			if v.Kind == ir.VarDef && v.Def != ir.NoExpr {
				def := e.graph.Unparen(v.Def)
				if _, isCond := e.graph.Expr(def).(*ir.Cond); !isCond {
					e.peel(def, b, varHops-1, depth-1, atoms, seen)
				}
			}
		}
	}
}

// peelCond handles a conditional guard with a boolean literal in one
// branch. There are four sub-cases: the literal may sit in either branch,
// and the observed value may contradict it, which pins down both the
// condition and the other branch. For example `cond ? true : x` evaluating
// false forces cond false and x false.
func (e *Engine) peelCond(n *ir.Cond, b bool, varHops, depth int, atoms *[]atom, seen map[atom]bool) {
	if lit, ok := e.boolLit(n.Then); ok && b != lit {
		// The true branch is ruled out: the condition is false and the
		// false branch produced the observed value.
		e.peel(n.If, false, varHops, depth-1, atoms, seen)
		e.peel(n.Else, b, varHops, depth-1, atoms, seen)
		return
	}
	if lit, ok := e.boolLit(n.Else); ok && b != lit {
		e.peel(n.If, true, varHops, depth-1, atoms, seen)
		e.peel(n.Then, b, varHops, depth-1, atoms, seen)
	}
}

// foldBoolTest computes the value forced on x by observing `x op lit`
// evaluate to branch.
func foldBoolTest(branch, lit bool, op token.Token) bool {
	v := lit
	if op == token.NEQ {
		v = !v
	}
	if !branch {
		v = !v
	}
	return v
}

// boolLit reports whether an expression is a boolean literal (or a named
// boolean constant) and its value.
func (e *Engine) boolLit(g ir.ExprID) (bool, bool) {
	var cv constant.Value
	switch n := e.graph.Expr(e.graph.Unparen(g)).(type) {
	case *ir.Lit:
		cv = n.Value
	case *ir.ConstRef:
		cv = n.Value
	default:
		return false, false
	}
	if cv == nil || cv.Kind() != constant.Bool {
		return false, false
	}
	return constant.BoolVal(cv), true
}

// tier1 resolves the query from the forced atoms alone: either g2 itself is
// among them, or the default-case rule applies.
func (e *Engine) tier1(atoms []atom, g2 ir.ExprID) (bool, bool) {
	ug2 := e.graph.Unparen(g2)
	for _, a := range atoms {
		if e.graph.Alike(a.expr, ug2) {
			return a.val, true
		}
	}

	// The default clause of a switch executing means no concrete case label
	// matched, so any sibling clause with compile-time constant labels is
	// known false.
	caseG2, isCase := e.graph.Expr(ug2).(*ir.Case)
	if !isCase || caseG2.Default {
		return false, false
	}
	for _, a := range atoms {
		if !a.val {
			continue
		}
		c, ok := e.graph.Expr(a.expr).(*ir.Case)
		if !ok || !c.Default || c.Switch != caseG2.Switch {
			continue
		}
		if e.allConstantLabels(caseG2.Values) {
			return false, true
		}
	}
	return false, false
}

func (e *Engine) allConstantLabels(values []ir.ExprID) bool {
	for _, v := range values {
		if _, ok := lattice.ValueOf(e.graph, v); !ok {
			return false
		}
	}
	return len(values) > 0
}
