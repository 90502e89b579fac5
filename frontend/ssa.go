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

package frontend

import (
	"go/ast"
	"go/token"
	"go/types"
	"maps"

	"go.uber.org/entail/hook"
	"go.uber.org/entail/ir"
	"go.uber.org/entail/util/analysishelper"
	"golang.org/x/tools/go/cfg"
)

// build converts one function's control-flow graph into a frozen program
// graph in SSA form. Variables whose address is taken or that are captured
// by a closure are excluded from renaming and stay implicit, since writes
// through other names would invalidate their SSA versions.
func build(pass *analysishelper.EnhancedPass, hooks *hook.Funcs, decl *ast.FuncDecl, g *cfg.CFG) *Func {
	b := &builder{
		pass:     pass,
		hooks:    hooks,
		graph:    ir.New(),
		pos:      make(map[ir.ExprID]token.Pos),
		src:      make(map[ir.ExprID]ast.Expr),
		env:      make(map[types.Object]ir.VarID),
		implicit: make(map[types.Object]ir.VarID),
		ssa:      make(map[*types.Var]bool),
	}
	s := &ssaBuilder{b: b, cfg: g}
	s.init()
	s.placePhis(decl)
	s.rename(0)
	b.graph.SetCursor(ir.NoBlock)
	b.graph.Freeze()
	return &Func{Graph: b.graph, Decl: decl, Pos: b.pos, Src: b.src}
}

// ssaBuilder carries the per-function state of SSA construction: the block
// mapping, the dominator tree over the source CFG, and the placed phis.
type ssaBuilder struct {
	b   *builder
	cfg *cfg.CFG

	irOf     []ir.BlockID
	preds    [][]int32
	idom     []int32
	children [][]int32
	df       [][]int32

	objs []*types.Var
	defs map[*types.Var]map[int32]bool
	phis []map[*types.Var]ir.VarID
}

func (s *ssaBuilder) init() {
	n := len(s.cfg.Blocks)
	s.irOf = make([]ir.BlockID, n)
	for i := range s.cfg.Blocks {
		if i == 0 {
			s.irOf[i] = s.b.graph.Entry()
		} else {
			s.irOf[i] = s.b.graph.NewBlock()
		}
	}

	s.preds = make([][]int32, n)
	for _, blk := range s.cfg.Blocks {
		for _, succ := range blk.Succs {
			s.preds[succ.Index] = append(s.preds[succ.Index], blk.Index)
		}
	}

	s.computeDominators()

	s.children = make([][]int32, n)
	for i, d := range s.idom {
		if d >= 0 && int32(i) != d {
			s.children[d] = append(s.children[d], int32(i))
		}
	}

	// Dominance frontiers, computed from immediate dominators and
	// predecessor lists in the usual way.
	s.df = make([][]int32, n)
	for bi, ps := range s.preds {
		if len(ps) < 2 {
			continue
		}
		for _, p := range ps {
			for runner := p; runner >= 0 && runner != s.idom[bi]; runner = s.idom[runner] {
				s.df[runner] = append(s.df[runner], int32(bi))
			}
		}
	}
}

// computeDominators runs the Cooper-Harvey-Kennedy iterative algorithm over
// a reverse postorder of the source CFG. Unreachable blocks keep idom -1 and
// are skipped by the rest of the construction.
func (s *ssaBuilder) computeDominators() {
	n := len(s.cfg.Blocks)
	rpo := make([]int32, n)
	order := make([]int32, 0, n)
	seen := make([]bool, n)
	var visit func(bi int32)
	visit = func(bi int32) {
		seen[bi] = true
		for _, succ := range s.cfg.Blocks[bi].Succs {
			if !seen[succ.Index] {
				visit(succ.Index)
			}
		}
		order = append(order, bi)
	}
	visit(0)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for i, bi := range order {
		rpo[bi] = int32(i)
	}

	s.idom = make([]int32, n)
	for i := range s.idom {
		s.idom[i] = -1
	}
	s.idom[0] = 0

	intersect := func(a, b int32) int32 {
		for a != b {
			for rpo[a] > rpo[b] {
				a = s.idom[a]
			}
			for rpo[b] > rpo[a] {
				b = s.idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		for _, bi := range order {
			if bi == 0 {
				continue
			}
			newIdom := int32(-1)
			for _, p := range s.preds[bi] {
				if s.idom[p] < 0 {
					continue
				}
				if newIdom < 0 {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom >= 0 && s.idom[bi] != newIdom {
				s.idom[bi] = newIdom
				changed = true
			}
		}
	}
}

// placePhis collects assignment sites per source variable, excludes escaping
// variables from renaming, and creates (still unwired) phi variables at the
// iterated dominance frontier of each variable's definition blocks.
func (s *ssaBuilder) placePhis(decl *ast.FuncDecl) {
	escaped := s.escapedVars(decl)
	s.defs = make(map[*types.Var]map[int32]bool)

	record := func(id *ast.Ident, bi int32) {
		if id == nil || id.Name == "_" {
			return
		}
		v, ok := s.b.pass.TypesInfo.ObjectOf(id).(*types.Var)
		if !ok || escaped[v] || v.Pos() < decl.Pos() || v.Pos() >= decl.End() {
			return
		}
		if s.defs[v] == nil {
			s.defs[v] = make(map[int32]bool)
			s.objs = append(s.objs, v)
			s.b.ssa[v] = true
		}
		s.defs[v][bi] = true
	}

	for _, blk := range s.cfg.Blocks {
		for _, node := range blk.Nodes {
			switch n := node.(type) {
			case *ast.AssignStmt:
				for _, lhs := range n.Lhs {
					if id, ok := ast.Unparen(lhs).(*ast.Ident); ok {
						record(id, blk.Index)
					}
				}
			case *ast.IncDecStmt:
				if id, ok := ast.Unparen(n.X).(*ast.Ident); ok {
					record(id, blk.Index)
				}
			case *ast.ValueSpec:
				if len(n.Values) > 0 {
					for _, id := range n.Names {
						record(id, blk.Index)
					}
				}
			case *ast.DeclStmt:
				if gd, ok := n.Decl.(*ast.GenDecl); ok {
					for _, spec := range gd.Specs {
						if vs, ok := spec.(*ast.ValueSpec); ok && len(vs.Values) > 0 {
							for _, id := range vs.Names {
								record(id, blk.Index)
							}
						}
					}
				}
			case *ast.RangeStmt:
				if id, ok := ast.Unparen(n.Key).(*ast.Ident); ok {
					record(id, blk.Index)
				}
				if n.Value != nil {
					if id, ok := ast.Unparen(n.Value).(*ast.Ident); ok {
						record(id, blk.Index)
					}
				}
			}
		}
	}

	s.phis = make([]map[*types.Var]ir.VarID, len(s.cfg.Blocks))
	for _, v := range s.objs {
		defBlocks := s.defs[v]
		work := make([]int32, 0, len(defBlocks))
		for bi := range defBlocks {
			work = append(work, bi)
		}
		hasPhi := make(map[int32]bool)
		for len(work) > 0 {
			x := work[len(work)-1]
			work = work[:len(work)-1]
			for _, y := range s.df[x] {
				if hasPhi[y] {
					continue
				}
				hasPhi[y] = true
				if s.phis[y] == nil {
					s.phis[y] = make(map[*types.Var]ir.VarID)
				}
				s.phis[y][v] = s.b.graph.NewPhi(v.Name(), v.Type(), s.irOf[y])
				if !defBlocks[y] {
					work = append(work, y)
				}
			}
		}
	}
}

// escapedVars returns the variables that must not be renamed: those captured
// by a closure or whose address is taken anywhere in the function.
func (s *ssaBuilder) escapedVars(decl *ast.FuncDecl) map[*types.Var]bool {
	escaped := make(map[*types.Var]bool)
	mark := func(id *ast.Ident) {
		if v, ok := s.b.pass.TypesInfo.ObjectOf(id).(*types.Var); ok {
			escaped[v] = true
		}
	}
	ast.Inspect(decl.Body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FuncLit:
			ast.Inspect(x.Body, func(m ast.Node) bool {
				if id, ok := m.(*ast.Ident); ok {
					mark(id)
				}
				return true
			})
			return false
		case *ast.UnaryExpr:
			if x.Op == token.AND {
				if id, ok := ast.Unparen(x.X).(*ast.Ident); ok {
					mark(id)
				}
			}
		}
		return true
	})
	return escaped
}

// rename walks the dominator tree, converting each block's nodes with the
// current variable environment, attaching branch conditions, and wiring the
// phi inputs of successors with the environment at this block's exit.
func (s *ssaBuilder) rename(bi int32) {
	blk := s.cfg.Blocks[bi]
	irb := s.irOf[bi]
	g := s.b.graph
	g.SetCursor(irb)
	s.b.cur = irb

	saved := s.b.env
	s.b.env = maps.Clone(saved)

	for v, phi := range s.phis[bi] {
		s.b.env[v] = phi
	}

	condID := ir.NoExpr
	for i, node := range blk.Nodes {
		isLast := i == len(blk.Nodes)-1
		switch n := node.(type) {
		case *ast.AssignStmt:
			s.b.assign(n)
		case *ast.IncDecStmt:
			s.b.incDec(n)
		case *ast.ValueSpec:
			s.b.valueSpec(n)
		case *ast.DeclStmt:
			if gd, ok := n.Decl.(*ast.GenDecl); ok {
				for _, spec := range gd.Specs {
					if vs, ok := spec.(*ast.ValueSpec); ok {
						s.b.valueSpec(vs)
					}
				}
			}
		case *ast.RangeStmt:
			s.b.define(n.Key, ir.NoExpr)
			if n.Value != nil {
				s.b.define(n.Value, ir.NoExpr)
			}
		case *ast.ExprStmt:
			s.b.convert(n.X)
		case *ast.ReturnStmt:
			for _, r := range n.Results {
				s.b.convert(r)
			}
		case *ast.SendStmt:
			s.b.convert(n.Value)
		case ast.Expr:
			id := s.b.convert(n)
			if isLast && len(blk.Succs) == 2 {
				condID = id
			}
		}
	}

	if condID != ir.NoExpr {
		g.SetBranch(irb, condID, s.irOf[blk.Succs[0].Index], s.irOf[blk.Succs[1].Index])
	} else {
		for _, succ := range blk.Succs {
			g.AddEdge(irb, s.irOf[succ.Index])
		}
	}

	for _, succ := range blk.Succs {
		for v, phi := range s.phis[succ.Index] {
			g.AddPhiInput(phi, ir.PhiInput{Var: s.b.varFor(v), From: irb})
		}
	}

	for _, c := range s.children[bi] {
		s.rename(c)
		g.SetCursor(irb)
		s.b.cur = irb
	}
	s.b.env = saved
}

// _compound maps compound assignment tokens to the underlying binary
// operator.
var _compound = map[token.Token]token.Token{
	token.ADD_ASSIGN:     token.ADD,
	token.SUB_ASSIGN:     token.SUB,
	token.MUL_ASSIGN:     token.MUL,
	token.QUO_ASSIGN:     token.QUO,
	token.REM_ASSIGN:     token.REM,
	token.AND_ASSIGN:     token.AND,
	token.OR_ASSIGN:      token.OR,
	token.XOR_ASSIGN:     token.XOR,
	token.SHL_ASSIGN:     token.SHL,
	token.SHR_ASSIGN:     token.SHR,
	token.AND_NOT_ASSIGN: token.AND_NOT,
}

func (b *builder) assign(n *ast.AssignStmt) {
	if op, ok := _compound[n.Tok]; ok && len(n.Lhs) == 1 {
		rhs := b.convert(n.Rhs[0])
		if id, isIdent := ast.Unparen(n.Lhs[0]).(*ast.Ident); isIdent {
			if v, isVar := b.pass.TypesInfo.ObjectOf(id).(*types.Var); isVar && b.ssa[v] {
				cur := b.graph.NewVarRef(b.varFor(v))
				b.define(n.Lhs[0], b.graph.NewBinary(op, cur, rhs))
				return
			}
		}
		return
	}

	if len(n.Lhs) == len(n.Rhs) {
		// RHS values are all evaluated before any assignment takes effect.
		rhs := make([]ir.ExprID, len(n.Rhs))
		for i := range n.Rhs {
			rhs[i] = b.convert(n.Rhs[i])
		}
		for i := range n.Lhs {
			b.define(n.Lhs[i], rhs[i])
		}
		return
	}

	// Tuple assignment: the per-variable values are not separable.
	for _, r := range n.Rhs {
		b.convert(r)
	}
	for _, lhs := range n.Lhs {
		b.define(lhs, ir.NoExpr)
	}
}

func (b *builder) incDec(n *ast.IncDecStmt) {
	op := token.ADD
	if n.Tok == token.DEC {
		op = token.SUB
	}
	if id, ok := ast.Unparen(n.X).(*ast.Ident); ok {
		if v, isVar := b.pass.TypesInfo.ObjectOf(id).(*types.Var); isVar && b.ssa[v] {
			cur := b.graph.NewVarRef(b.varFor(v))
			b.define(n.X, b.graph.NewBinary(op, cur, b.graph.NewIntLit(1)))
		}
	}
}

func (b *builder) valueSpec(n *ast.ValueSpec) {
	if len(n.Names) != len(n.Values) {
		for _, r := range n.Values {
			b.convert(r)
		}
		for _, id := range n.Names {
			b.define(id, ir.NoExpr)
		}
		return
	}
	for i, id := range n.Names {
		b.define(id, b.convert(n.Values[i]))
	}
}

// define records a new SSA version for the assigned variable, if it is
// eligible for renaming. A NoExpr definition records an update whose value
// the frontend cannot interpret.
func (b *builder) define(lhs ast.Expr, def ir.ExprID) {
	id, ok := ast.Unparen(lhs).(*ast.Ident)
	if !ok || id.Name == "_" {
		return
	}
	v, ok := b.pass.TypesInfo.ObjectOf(id).(*types.Var)
	if !ok || !b.ssa[v] {
		return
	}
	var nv ir.VarID
	if def == ir.NoExpr {
		nv = b.graph.NewImplicit(v.Name(), v.Type(), b.cur)
	} else {
		nv = b.graph.NewDef(v.Name(), v.Type(), b.cur, def)
	}
	b.env[v] = nv
}
