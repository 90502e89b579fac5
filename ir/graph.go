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

// Package ir models the program graph that the reasoning core queries: basic
// blocks with dominance, expressions, and SSA variables. All entities live in
// arenas inside a Graph and are addressed by small integer handles, so the
// inherently cyclic structure (phi nodes referencing blocks referencing
// definitions) never forms reference cycles at the object level.
//
// A Graph is built by a collaborator (the frontend, or a test fixture),
// frozen exactly once, and is read-only afterwards. Every query on a frozen
// Graph is a pure function, safe for concurrent use.
package ir

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"
)

// ExprID is a stable handle to an expression node in a Graph.
type ExprID int32

// BlockID is a stable handle to a basic block in a Graph.
type BlockID int32

// VarID is a stable handle to an SSA variable in a Graph.
type VarID int32

// SwitchID is a stable handle to a multi-way branch in a Graph.
type SwitchID int32

// Sentinel handles for "no such entity".
const (
	NoExpr  ExprID  = -1
	NoBlock BlockID = -1
	NoVar   VarID   = -1
)

// VarKind classifies the defining site of an SSA variable.
type VarKind uint8

const (
	// VarDef is a normal definition with an interpretable source expression.
	VarDef VarKind = iota
	// VarPhi is a merge of definitions from multiple incoming edges.
	VarPhi
	// VarImplicit is a definition of unknown origin: a parameter, a field
	// read, or any source the builder could not interpret.
	VarImplicit
)

// A PhiInput is one input of a phi variable, tagged with the predecessor
// block the value flows in from.
type PhiInput struct {
	Var  VarID
	From BlockID
}

// A Var is an SSA variable. Exactly one of Def (for VarDef) and Inputs (for
// VarPhi) is meaningful; VarImplicit has neither.
type Var struct {
	Name   string
	Kind   VarKind
	Type   types.Type
	Block  BlockID
	Def    ExprID
	Inputs []PhiInput
}

// A Block is a basic block. If Cond is not NoExpr the block ends in a
// two-way branch: Succs[0] is taken when Cond evaluates true and Succs[1]
// when it evaluates false.
type Block struct {
	Succs []BlockID
	Preds []BlockID
	Cond  ExprID
}

// A Switch records the clauses of one multi-way branch so that Case guards
// belonging to the same switch can be related to each other.
type Switch struct {
	Tag   ExprID
	Cases []ExprID
}

// A Graph is the arena holding one function's blocks, expressions, and SSA
// variables. The zero value is not usable; construct with New.
type Graph struct {
	exprs     []Expr
	exprTypes []types.Type
	exprBlock []BlockID
	vars      []Var
	blocks    []Block
	switches  []Switch
	entry     BlockID
	cursor    BlockID
	idom      []BlockID
	rpoNum    []int32
	frozen    bool
}

// New returns an empty Graph with a single entry block. The build cursor
// starts at the entry block.
func New() *Graph {
	g := &Graph{entry: 0, cursor: NoBlock}
	g.NewBlock()
	g.cursor = g.entry
	return g
}

// Entry returns the entry block of the graph.
func (g *Graph) Entry() BlockID { return g.entry }

// NumBlocks returns the number of blocks in the graph.
func (g *Graph) NumBlocks() int { return len(g.blocks) }

// NewBlock appends a fresh block to the graph and returns its handle.
func (g *Graph) NewBlock() BlockID {
	g.mutable()
	g.blocks = append(g.blocks, Block{Cond: NoExpr})
	return BlockID(len(g.blocks) - 1)
}

// AddEdge records an unconditional control-flow edge from one block to
// another.
func (g *Graph) AddEdge(from, to BlockID) {
	g.mutable()
	g.blocks[from].Succs = append(g.blocks[from].Succs, to)
}

// SetBranch marks a block as ending in a two-way branch on cond, with the
// given true and false successors. The cond expression's evaluation point is
// recorded as this block.
func (g *Graph) SetBranch(b BlockID, cond ExprID, onTrue, onFalse BlockID) {
	g.mutable()
	g.blocks[b].Cond = cond
	g.blocks[b].Succs = []BlockID{onTrue, onFalse}
	g.exprBlock[cond] = b
}

// Block returns the block with the given handle.
func (g *Graph) Block(b BlockID) *Block { return &g.blocks[b] }

// SetCursor moves the build cursor: expressions created afterwards record b
// as their evaluation block. Pass NoBlock to create floating expressions.
func (g *Graph) SetCursor(b BlockID) {
	g.mutable()
	g.cursor = b
}

// Cursor returns the current build cursor.
func (g *Graph) Cursor() BlockID { return g.cursor }

// addExpr interns an expression node, returning its handle. The expression's
// evaluation block is taken from the build cursor.
func (g *Graph) addExpr(e Expr, t types.Type) ExprID {
	g.mutable()
	g.exprs = append(g.exprs, e)
	g.exprTypes = append(g.exprTypes, t)
	g.exprBlock = append(g.exprBlock, g.cursor)
	return ExprID(len(g.exprs) - 1)
}

// Expr returns the node for an expression handle.
func (g *Graph) Expr(e ExprID) Expr { return g.exprs[e] }

// TypeOf returns the recorded type of an expression, or nil if the builder
// did not supply one.
func (g *Graph) TypeOf(e ExprID) types.Type { return g.exprTypes[e] }

// BlockOf returns the block at which a guard expression is evaluated, or
// NoBlock if the expression is not attached to a branch point.
func (g *Graph) BlockOf(e ExprID) BlockID { return g.exprBlock[e] }

// SetEvalBlock attaches an expression to the block where it is evaluated.
func (g *Graph) SetEvalBlock(e ExprID, b BlockID) {
	g.mutable()
	g.exprBlock[e] = b
}

// NewVarRef interns a read of the given variable.
func (g *Graph) NewVarRef(v VarID) ExprID {
	return g.addExpr(&VarRef{Var: v}, g.vars[v].Type)
}

// NewLit interns a literal with the given folded constant value and type.
func (g *Graph) NewLit(v constant.Value, t types.Type) ExprID {
	return g.addExpr(&Lit{Value: v}, t)
}

// NewIntLit interns an integer literal.
func (g *Graph) NewIntLit(i int64) ExprID {
	return g.NewLit(constant.MakeInt64(i), types.Typ[types.Int])
}

// NewFloatLit interns a floating-point literal.
func (g *Graph) NewFloatLit(f float64) ExprID {
	return g.NewLit(constant.MakeFloat64(f), types.Typ[types.Float64])
}

// NewBoolLit interns a boolean literal.
func (g *Graph) NewBoolLit(b bool) ExprID {
	return g.NewLit(constant.MakeBool(b), types.Typ[types.Bool])
}

// NewStrLit interns a string literal.
func (g *Graph) NewStrLit(s string) ExprID {
	return g.NewLit(constant.MakeString(s), types.Typ[types.String])
}

// NewCharLit interns a character literal.
func (g *Graph) NewCharLit(r rune) ExprID {
	return g.addExpr(&Lit{Value: constant.MakeInt64(int64(r)), IsChar: true}, types.Typ[types.Rune])
}

// NewNilLit interns the nil literal.
func (g *Graph) NewNilLit() ExprID {
	return g.addExpr(&Lit{Value: nil}, types.Typ[types.UntypedNil])
}

// NewConstRef interns a reference to a named constant. value may be nil for
// an opaque enum-style member whose declaration is not visible.
func (g *Graph) NewConstRef(name string, value constant.Value, t types.Type) ExprID {
	return g.addExpr(&ConstRef{Name: name, Value: value}, t)
}

// NewBinary interns a binary operation. The result type is taken from the
// left operand for arithmetic operators and bool for comparisons.
func (g *Graph) NewBinary(op token.Token, x, y ExprID) ExprID {
	t := g.exprTypes[x]
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
		t = types.Typ[types.Bool]
	}
	return g.addExpr(&Binary{Op: op, X: x, Y: y}, t)
}

// NewUnary interns a unary operation.
func (g *Graph) NewUnary(op token.Token, x ExprID) ExprID {
	return g.addExpr(&Unary{Op: op, X: x}, g.exprTypes[x])
}

// NewParen interns a parenthesized expression.
func (g *Graph) NewParen(x ExprID) ExprID {
	return g.addExpr(&Paren{X: x}, g.exprTypes[x])
}

// NewCond interns a conditional selection.
func (g *Graph) NewCond(ifE, thenE, elseE ExprID) ExprID {
	return g.addExpr(&Cond{If: ifE, Then: thenE, Else: elseE}, g.exprTypes[thenE])
}

// NewConv interns a conversion of x to type t.
func (g *Graph) NewConv(x ExprID, t types.Type) ExprID {
	return g.addExpr(&Conv{X: x}, t)
}

// NewCall interns a call to the named function.
func (g *Graph) NewCall(fun string, t types.Type, args ...ExprID) ExprID {
	return g.addExpr(&Call{Fun: fun, Args: args}, t)
}

// NewOpaque interns an uninterpretable source expression of the given type.
func (g *Graph) NewOpaque(t types.Type) ExprID {
	return g.addExpr(&Opaque{}, t)
}

// NewSwitch starts a multi-way branch over the given tag expression.
func (g *Graph) NewSwitch(tag ExprID) SwitchID {
	g.mutable()
	g.switches = append(g.switches, Switch{Tag: tag})
	return SwitchID(len(g.switches) - 1)
}

// NewCase interns a case-clause guard of the given switch; an empty values
// list denotes the default clause.
func (g *Graph) NewCase(sw SwitchID, values ...ExprID) ExprID {
	e := g.addExpr(&Case{Switch: sw, Values: values, Default: len(values) == 0}, types.Typ[types.Bool])
	g.switches[sw].Cases = append(g.switches[sw].Cases, e)
	return e
}

// Switch returns the switch with the given handle.
func (g *Graph) Switch(sw SwitchID) *Switch { return &g.switches[sw] }

// NewDef declares an SSA variable with a normal defining expression.
func (g *Graph) NewDef(name string, t types.Type, b BlockID, def ExprID) VarID {
	g.mutable()
	g.vars = append(g.vars, Var{Name: name, Kind: VarDef, Type: t, Block: b, Def: def})
	return VarID(len(g.vars) - 1)
}

// NewImplicit declares an SSA variable of unknown origin.
func (g *Graph) NewImplicit(name string, t types.Type, b BlockID) VarID {
	g.mutable()
	g.vars = append(g.vars, Var{Name: name, Kind: VarImplicit, Type: t, Block: b, Def: NoExpr})
	return VarID(len(g.vars) - 1)
}

// NewPhi declares a phi variable merging the given inputs at block b.
func (g *Graph) NewPhi(name string, t types.Type, b BlockID, inputs ...PhiInput) VarID {
	g.mutable()
	g.vars = append(g.vars, Var{Name: name, Kind: VarPhi, Type: t, Block: b, Def: NoExpr, Inputs: inputs})
	return VarID(len(g.vars) - 1)
}

// AddPhiInput appends one input to a phi variable. SSA construction creates
// phis empty and wires inputs as predecessors are renamed.
func (g *Graph) AddPhiInput(v VarID, in PhiInput) {
	g.mutable()
	if g.vars[v].Kind != VarPhi {
		panic("ir: AddPhiInput on a non-phi variable")
	}
	g.vars[v].Inputs = append(g.vars[v].Inputs, in)
}

// Var returns the variable with the given handle.
func (g *Graph) Var(v VarID) *Var { return &g.vars[v] }

// NumVars returns the number of SSA variables in the graph.
func (g *Graph) NumVars() int { return len(g.vars) }

// Unparen peels any number of Paren wrappers off an expression handle.
func (g *Graph) Unparen(e ExprID) ExprID {
	for {
		p, ok := g.exprs[e].(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}

// Alike reports structural equality of two expressions: same shape, same
// operators, and the same variables, constants, and callees at the leaves.
// Parentheses are ignored. Opaque expressions are alike only to themselves,
// since nothing relates two uninterpretable sources.
func (g *Graph) Alike(a, b ExprID) bool {
	a, b = g.Unparen(a), g.Unparen(b)
	if a == b {
		return true
	}
	switch x := g.exprs[a].(type) {
	case *VarRef:
		y, ok := g.exprs[b].(*VarRef)
		return ok && x.Var == y.Var
	case *Lit:
		y, ok := g.exprs[b].(*Lit)
		if !ok || x.IsChar != y.IsChar {
			return false
		}
		if x.Value == nil || y.Value == nil {
			return x.Value == nil && y.Value == nil
		}
		return constant.Compare(x.Value, token.EQL, y.Value)
	case *ConstRef:
		y, ok := g.exprs[b].(*ConstRef)
		return ok && x.Name == y.Name
	case *Unary:
		y, ok := g.exprs[b].(*Unary)
		return ok && x.Op == y.Op && g.Alike(x.X, y.X)
	case *Binary:
		y, ok := g.exprs[b].(*Binary)
		return ok && x.Op == y.Op && g.Alike(x.X, y.X) && g.Alike(x.Y, y.Y)
	case *Cond:
		y, ok := g.exprs[b].(*Cond)
		return ok && g.Alike(x.If, y.If) && g.Alike(x.Then, y.Then) && g.Alike(x.Else, y.Else)
	case *Conv:
		y, ok := g.exprs[b].(*Conv)
		return ok && types.Identical(g.exprTypes[a], g.exprTypes[b]) && g.Alike(x.X, y.X)
	case *Call:
		y, ok := g.exprs[b].(*Call)
		if !ok || x.Fun != y.Fun || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !g.Alike(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Case:
		y, ok := g.exprs[b].(*Case)
		if !ok || x.Switch != y.Switch || x.Default != y.Default || len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if !g.Alike(x.Values[i], y.Values[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (g *Graph) mutable() {
	if g.frozen {
		panic("ir: mutation of a frozen graph")
	}
}

// Freeze derives predecessor lists and the dominator tree and marks the
// graph immutable. It must be called exactly once, after which all queries
// are safe for concurrent use.
func (g *Graph) Freeze() {
	if g.frozen {
		panic("ir: graph frozen twice")
	}
	for b := range g.blocks {
		for _, s := range g.blocks[b].Succs {
			g.blocks[s].Preds = append(g.blocks[s].Preds, BlockID(b))
		}
	}
	g.computeDominance()
	g.frozen = true
}

// computeDominance runs the Cooper-Harvey-Kennedy iterative algorithm over a
// reverse postorder of the blocks.
func (g *Graph) computeDominance() {
	n := len(g.blocks)
	g.rpoNum = make([]int32, n)
	order := make([]BlockID, 0, n)
	seen := make([]bool, n)
	var visit func(b BlockID)
	visit = func(b BlockID) {
		seen[b] = true
		for _, s := range g.blocks[b].Succs {
			if !seen[s] {
				visit(s)
			}
		}
		order = append(order, b)
	}
	visit(g.entry)

	// Reverse the postorder in place and assign RPO numbers.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for i, b := range order {
		g.rpoNum[b] = int32(i)
	}

	g.idom = make([]BlockID, n)
	for i := range g.idom {
		g.idom[i] = NoBlock
	}
	g.idom[g.entry] = g.entry

	for changed := true; changed; {
		changed = false
		for _, b := range order {
			if b == g.entry {
				continue
			}
			newIdom := NoBlock
			for _, p := range g.blocks[b].Preds {
				if g.idom[p] == NoBlock {
					continue
				}
				if newIdom == NoBlock {
					newIdom = p
				} else {
					newIdom = g.intersect(p, newIdom)
				}
			}
			if newIdom != NoBlock && g.idom[b] != newIdom {
				g.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (g *Graph) intersect(a, b BlockID) BlockID {
	for a != b {
		for g.rpoNum[a] > g.rpoNum[b] {
			a = g.idom[a]
		}
		for g.rpoNum[b] > g.rpoNum[a] {
			b = g.idom[b]
		}
	}
	return a
}

// Dominates reports whether block a dominates block b (reflexively).
func (g *Graph) Dominates(a, b BlockID) bool {
	if !g.frozen {
		panic("ir: dominance query on an unfrozen graph")
	}
	if g.idom[b] == NoBlock {
		// b is unreachable; dominance is vacuous, report false to keep
		// callers from reasoning about dead code.
		return false
	}
	for {
		if a == b {
			return true
		}
		if b == g.entry {
			return false
		}
		b = g.idom[b]
	}
}

// StrictlyDominates reports whether a dominates b and a != b.
func (g *Graph) StrictlyDominates(a, b BlockID) bool {
	return a != b && g.Dominates(a, b)
}

// ControlledBy reports whether every path reaching block b passes through a
// fixed outcome of the branch on guard. It returns that outcome and true, or
// false if b is not controlled by the guard. The guard must be attached to a
// branch block via SetBranch.
func (g *Graph) ControlledBy(b BlockID, guard ExprID) (branch bool, ok bool) {
	gb := g.exprBlock[guard]
	if gb == NoBlock || g.blocks[gb].Cond != guard || !g.StrictlyDominates(gb, b) {
		return false, false
	}
	onTrue, onFalse := g.blocks[gb].Succs[0], g.blocks[gb].Succs[1]
	if g.soleEdgeTarget(gb, onTrue) && g.Dominates(onTrue, b) {
		return true, true
	}
	if g.soleEdgeTarget(gb, onFalse) && g.Dominates(onFalse, b) {
		return false, true
	}
	return false, false
}

// soleEdgeTarget reports whether to is reached only through the edge from
// `from`, which makes domination by `to` equivalent to taking that edge.
func (g *Graph) soleEdgeTarget(from, to BlockID) bool {
	return len(g.blocks[to].Preds) == 1 && g.blocks[to].Preds[0] == from
}

// Reaches reports whether block b can reach block target along successor
// edges (reflexively).
func (g *Graph) Reaches(b, target BlockID) bool {
	if !g.frozen {
		panic("ir: reachability query on an unfrozen graph")
	}
	seen := make([]bool, len(g.blocks))
	stack := []BlockID{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.blocks[cur].Succs...)
	}
	return false
}

// Uses returns the handles of all reads of the given variable.
func (g *Graph) Uses(v VarID) []ExprID {
	var uses []ExprID
	for i, e := range g.exprs {
		if r, ok := e.(*VarRef); ok && r.Var == v {
			uses = append(uses, ExprID(i))
		}
	}
	return uses
}

// LiveAt reports whether variable v may still be read at or after block b:
// some use of v sits in a block reachable from b. In SSA form a variable is
// never redefined, so reachability of a use is sufficient.
func (g *Graph) LiveAt(v VarID, b BlockID) bool {
	for _, use := range g.Uses(v) {
		ub := g.exprBlock[use]
		if ub == NoBlock {
			continue
		}
		if g.Reaches(b, ub) {
			return true
		}
	}
	return false
}

// String renders a compact description of the graph for debugging.
func (g *Graph) String() string {
	return fmt.Sprintf("ir.Graph{blocks: %d, exprs: %d, vars: %d}", len(g.blocks), len(g.exprs), len(g.vars))
}
