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
	"go.uber.org/entail/ir"
	"go.uber.org/entail/lattice"
	"go.uber.org/entail/relation"
)

// tier2 adds reasoning over conditional assignments: when an SSA variable
// is defined by a conditional expression guarded by g2, facts about the
// variable's value pin down which branch g2 took.
func (e *Engine) tier2(g1 ir.ExprID, b1 bool, atoms []atom, g2 ir.ExprID, tier Tier) (bool, bool) {
	ug2 := e.graph.Unparen(g2)
	for vid := ir.VarID(0); int(vid) < e.graph.NumVars(); vid++ {
		cond, ok := e.condDef(vid)
		if !ok || !e.graph.Alike(cond.If, ug2) {
			continue
		}
		kThen, okThen := lattice.ValueOf(e.graph, cond.Then)
		kElse, okElse := lattice.ValueOf(e.graph, cond.Else)

		// Conditional-assignment forcing: `v = g2 ? k : other` and a proof
		// of v != k rule out the true branch, and symmetrically.
		if okThen && e.provesDisequality(atoms, vid, kThen, tier) {
			return false, true
		}
		if okElse && e.provesDisequality(atoms, vid, kElse, tier) {
			return true, true
		}

		// Unique-value forcing: both arms are known constants and provably
		// different, so proving v equal to one of them identifies the
		// branch, subject to the dominance side-condition below.
		if okThen && okElse && lattice.Distinct(kThen, kElse) && e.uniqueValueSiteOK(g1, b1, ug2, vid) {
			if m, ok := e.provesEquality(atoms, vid); ok {
				if m.Eq(kThen) {
					return true, true
				}
				if m.Eq(kElse) {
					return false, true
				}
			}
		}
	}
	return false, false
}

// condDef returns the conditional defining expression of a variable with a
// normal definition, if it has one.
func (e *Engine) condDef(v ir.VarID) (*ir.Cond, bool) {
	vr := e.graph.Var(v)
	if vr.Kind != ir.VarDef || vr.Def == ir.NoExpr {
		return nil, false
	}
	cond, ok := e.graph.Expr(e.graph.Unparen(vr.Def)).(*ir.Cond)
	return cond, ok
}

// uniqueValueSiteOK enforces the asymmetric dominance side-condition of
// unique-value forcing: there must be a use of v that g2's evaluation
// dominates, while the hypothesis guard g1 does not already dominate that
// use under the branch being assumed. Both conjuncts are load-bearing;
// weakening either direction would let the engine derive implications about
// guards that do not actually control the point of interest.
func (e *Engine) uniqueValueSiteOK(g1 ir.ExprID, b1 bool, ug2 ir.ExprID, v ir.VarID) bool {
	g := e.graph
	gb2 := g.BlockOf(ug2)
	if gb2 == ir.NoBlock {
		return false
	}
	for _, use := range g.Uses(v) {
		ub := g.BlockOf(use)
		if ub == ir.NoBlock {
			continue
		}
		if !g.Dominates(gb2, ub) {
			continue
		}
		if e.dominatedUnderBranch(g1, b1, ub) {
			continue
		}
		return true
	}
	return false
}

// dominatedUnderBranch reports whether block b is controlled by guard g1
// evaluating to exactly b1.
func (e *Engine) dominatedUnderBranch(g1 ir.ExprID, b1 bool, b ir.BlockID) bool {
	cond, ok := e.branchFor(e.graph.Unparen(g1))
	if !ok {
		return false
	}
	br, ok := e.graph.ControlledBy(b, cond)
	return ok && br == b1
}

// branchFor resolves a guard expression to the condition of the branch block
// testing a structurally identical guard. The resolution must be unique: if
// several branch blocks test alike guards, none of them can be singled out as
// "the" evaluation of this guard.
func (e *Engine) branchFor(guard ir.ExprID) (ir.ExprID, bool) {
	g := e.graph
	if gb := g.BlockOf(guard); gb != ir.NoBlock && g.Block(gb).Cond == guard {
		return guard, true
	}
	found := ir.NoExpr
	for b := 0; b < g.NumBlocks(); b++ {
		cond := g.Block(ir.BlockID(b)).Cond
		if cond == ir.NoExpr || !g.Alike(cond, guard) {
			continue
		}
		if found != ir.NoExpr {
			return ir.NoExpr, false
		}
		found = cond
	}
	return found, found != ir.NoExpr
}

// varFact reads an atom as an equality or disequality fact about an SSA
// variable: `v == m` or `v != m` for a lattice element m.
func (e *Engine) varFact(a atom) (v ir.VarID, m lattice.Value, isEq bool, ok bool) {
	lhs, rhs, eqOp, ok := relation.ClassifyEquality(e.graph, a.expr)
	if !ok {
		return 0, lattice.Value{}, false, false
	}
	if vr, isVar := e.graph.Expr(lhs).(*ir.VarRef); isVar {
		if m, isVal := lattice.ValueOf(e.graph, rhs); isVal {
			return vr.Var, m, a.val == eqOp, true
		}
	}
	if vr, isVar := e.graph.Expr(rhs).(*ir.VarRef); isVar {
		if m, isVal := lattice.ValueOf(e.graph, lhs); isVal {
			return vr.Var, m, a.val == eqOp, true
		}
	}
	return 0, lattice.Value{}, false, false
}

// provesDisequality reports whether the hypothesis atoms prove v != k:
// either directly, via an equality with a value provably distinct from k,
// or (at TierFull) via a numeric bound that excludes k.
func (e *Engine) provesDisequality(atoms []atom, v ir.VarID, k lattice.Value, tier Tier) bool {
	for _, a := range atoms {
		if x, m, isEq, ok := e.varFact(a); ok && x == v {
			if isEq && lattice.Distinct(m, k) {
				return true
			}
			if !isEq && m.Eq(k) {
				return true
			}
		}
		if tier >= TierFull && e.boundExcludes(a, v, k) {
			return true
		}
	}
	return false
}

// provesEquality reports the lattice element the hypothesis atoms prove v
// equal to, if any.
func (e *Engine) provesEquality(atoms []atom, v ir.VarID) (lattice.Value, bool) {
	for _, a := range atoms {
		if x, m, isEq, ok := e.varFact(a); ok && x == v && isEq {
			return m, true
		}
	}
	return lattice.Value{}, false
}
