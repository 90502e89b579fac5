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

	"go.uber.org/entail/ir"
	"go.uber.org/entail/lattice"
	"go.uber.org/entail/relation"
)

// tier3 generalizes conditional-assignment forcing from ternaries to
// phi-node merges: when a phi's incoming edges are all controlled by guard
// g2 and exactly one edge carries a known constant, facts about the merged
// value pin down g2's branch. Disequality proofs here may use the full
// bound machinery (integer comparisons) in addition to direct equality
// tests, and a specialized rule tracks nil through provably non-nil edges.
func (e *Engine) tier3(g1 ir.ExprID, b1 bool, atoms []atom, g2 ir.ExprID) (bool, bool) {
	g := e.graph
	ug2 := g.Unparen(g2)

	// Guards are pure, so every branch block testing an alike guard is an
	// evaluation of g2; each one is a candidate controller of the phi edges.
	// In particular g2 may itself be a branch condition repeating an earlier
	// guard, and the phi edges are controlled by the earlier evaluation.
	for bi := 0; bi < g.NumBlocks(); bi++ {
		cond := g.Block(ir.BlockID(bi)).Cond
		if cond == ir.NoExpr || !g.Alike(cond, ug2) {
			continue
		}
		if b2, ok := e.tier3Cond(g1, b1, atoms, ug2, cond); ok {
			return b2, true
		}
	}
	return false, false
}

// tier3Cond applies phi forcing against one concrete evaluation of the guard.
func (e *Engine) tier3Cond(g1 ir.ExprID, b1 bool, atoms []atom, ug2, cond ir.ExprID) (bool, bool) {
	g := e.graph
	for vid := ir.VarID(0); int(vid) < g.NumVars(); vid++ {
		v := g.Var(vid)
		if v.Kind != ir.VarPhi || len(v.Inputs) < 2 {
			continue
		}

		// Split the phi inputs by the branch of g2 controlling their origin
		// edge; any uncontrolled input disqualifies the phi.
		var onTrue, onFalse []ir.PhiInput
		controlled := true
		for _, in := range v.Inputs {
			br, ok := g.ControlledBy(in.From, cond)
			if !ok {
				controlled = false
				break
			}
			if br {
				onTrue = append(onTrue, in)
			} else {
				onFalse = append(onFalse, in)
			}
		}
		if !controlled {
			continue
		}

		if b2, ok := e.phiForcing(g1, b1, atoms, ug2, vid, onTrue, onFalse, true); ok {
			return b2, true
		}
		if b2, ok := e.phiForcing(g1, b1, atoms, ug2, vid, onFalse, onTrue, false); ok {
			return b2, true
		}
	}
	return false, false
}

// phiForcing applies the forcing rules for the phi side reached under
// `g2 == branch`, which must hold exactly one input.
func (e *Engine) phiForcing(g1 ir.ExprID, b1 bool, atoms []atom, ug2 ir.ExprID, v ir.VarID, side, other []ir.PhiInput, branch bool) (bool, bool) {
	if len(side) != 1 || len(other) == 0 {
		return false, false
	}
	in := side[0]

	if k, ok := e.inputValue(in); ok {
		// Under g2 == branch the merge must have taken this edge, so
		// proving v != k rules that branch out.
		if e.provesDisequality(atoms, v, k, TierFull) {
			return !branch, true
		}

		// Unique-value forcing: if every input on the other side carries a
		// value provably different from k, then v == k identifies the
		// branch. Any other-side input with an unrepresentable value blocks
		// the rule: the variable could hold k via a path we cannot see.
		if e.allDistinct(other, k) && e.uniqueValueSiteOK(g1, b1, ug2, v) {
			if m, ok := e.provesEquality(atoms, v); ok && m.Eq(k) {
				return branch, true
			}
		}
	}

	// Nil tracking: this edge is provably non-nil while another path is
	// nil, so proving v == nil forces the opposite branch.
	if e.nonnil != nil && e.inputNonNil(in) && e.anyNilInput(other) {
		if m, ok := e.provesEquality(atoms, v); ok && m.Eq(lattice.Null()) {
			return !branch, true
		}
	}
	return false, false
}

// inputValue returns the lattice element a phi input is known to carry: its
// variable must have a normal definition that folds to a constant.
func (e *Engine) inputValue(in ir.PhiInput) (lattice.Value, bool) {
	v := e.graph.Var(in.Var)
	if v.Kind != ir.VarDef || v.Def == ir.NoExpr {
		return lattice.Value{}, false
	}
	return lattice.ValueOf(e.graph, v.Def)
}

func (e *Engine) allDistinct(inputs []ir.PhiInput, k lattice.Value) bool {
	for _, in := range inputs {
		m, ok := e.inputValue(in)
		if !ok || !lattice.Distinct(m, k) {
			return false
		}
	}
	return true
}

// inputNonNil consults the external oracle on the defining expression of a
// phi input.
func (e *Engine) inputNonNil(in ir.PhiInput) bool {
	v := e.graph.Var(in.Var)
	if v.Kind != ir.VarDef || v.Def == ir.NoExpr {
		return false
	}
	return e.nonnil.AlwaysNonNil(e.graph, v.Def)
}

func (e *Engine) anyNilInput(inputs []ir.PhiInput) bool {
	for _, in := range inputs {
		if m, ok := e.inputValue(in); ok && m.Eq(lattice.Null()) {
			return true
		}
	}
	return false
}

// boundExcludes reports whether an atom, read as an integer comparison,
// imposes a bound on v that excludes the value k. This is the
// range-analysis-style disequality proof available at TierFull only.
func (e *Engine) boundExcludes(a atom, v ir.VarID, k lattice.Value) bool {
	if k.Kind != lattice.KindInt && k.Kind != lattice.KindChar {
		return false
	}
	lhs, rhs, rel, ok := relation.Classify(e.graph, a.expr)
	if !ok {
		return false
	}
	form, haveForm := e.normalize(lhs, v)
	other := rhs
	if !haveForm {
		if form, haveForm = e.normalize(rhs, v); !haveForm {
			return false
		}
		rel = rel.Swap()
		other = lhs
	}
	c, ok := constFloat(e.graph, other)
	if !ok {
		return false
	}

	if !a.val {
		rel = rel.NegateBranch()
	}
	if form.P < 0 {
		// Dividing the inequality by a negative coefficient flips its
		// direction; strictness is unaffected, which is exactly Swap.
		rel = rel.Swap()
	}
	bound := (c - form.Q) / form.P
	kf := float64(k.I)
	if rel.Dir == relation.Lesser {
		return kf > bound || (kf == bound && rel.Strict == relation.Strict)
	}
	return kf < bound || (kf == bound && rel.Strict == relation.Strict)
}

// constFloat evaluates a compile-time numeric constant to a float.
func constFloat(g *ir.Graph, e ir.ExprID) (float64, bool) {
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
