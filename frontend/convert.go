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
	"go/constant"
	"go/token"
	"go/types"

	"go.uber.org/entail/hook"
	"go.uber.org/entail/ir"
	"go.uber.org/entail/util/analysishelper"
)

// A Func is the converted form of one source function: its frozen program
// graph plus the source mapping needed to report diagnostics back on the
// original syntax.
type Func struct {
	Graph *ir.Graph
	Decl  *ast.FuncDecl
	// Pos and Src map expression handles back to source positions and AST
	// nodes; only handles converted directly from syntax appear here.
	Pos map[ir.ExprID]token.Pos
	Src map[ir.ExprID]ast.Expr
}

// builder holds the conversion state for one function.
type builder struct {
	pass  *analysishelper.EnhancedPass
	hooks *hook.Funcs
	graph *ir.Graph
	pos   map[ir.ExprID]token.Pos
	src   map[ir.ExprID]ast.Expr

	// env maps each source variable to its current SSA variable at the
	// renaming position; implicit holds the fallback variables for objects
	// never assigned in this function (parameters, captured variables).
	// ssa marks the variables eligible for renaming, and cur is the block
	// being converted.
	env      map[types.Object]ir.VarID
	implicit map[types.Object]ir.VarID
	ssa      map[*types.Var]bool
	cur      ir.BlockID
}

// convert translates one source expression at the current renaming position
// into the expression arena. Uninterpretable sources become opaque nodes
// rather than failures: the reasoning core treats them as unknown.
func (b *builder) convert(e ast.Expr) ir.ExprID {
	t := b.pass.TypesInfo.TypeOf(e)
	var id ir.ExprID
	switch n := e.(type) {
	case *ast.ParenExpr:
		id = b.graph.NewParen(b.convert(n.X))
	case *ast.Ident:
		id = b.convertIdent(n, t)
	case *ast.BasicLit:
		id = b.convertLit(n, t)
	case *ast.UnaryExpr:
		switch n.Op {
		case token.NOT, token.ADD, token.SUB, token.XOR, token.AND:
			id = b.graph.NewUnary(n.Op, b.convert(n.X))
		default:
			id = b.graph.NewOpaque(t)
		}
	case *ast.BinaryExpr:
		id = b.graph.NewBinary(n.Op, b.convert(n.X), b.convert(n.Y))
	case *ast.CallExpr:
		id = b.convertCall(n, t)
	default:
		// Selectors, indexing, composite literals and the rest are opaque
		// to the reasoning core.
		id = b.graph.NewOpaque(t)
	}
	b.pos[id] = e.Pos()
	b.src[id] = e
	return id
}

func (b *builder) convertIdent(n *ast.Ident, t types.Type) ir.ExprID {
	if b.pass.IsNilLit(n) {
		return b.graph.NewNilLit()
	}
	obj := b.pass.TypesInfo.ObjectOf(n)
	if cv, ok := b.pass.ConstVal(n); ok {
		return b.graph.NewConstRef(qualifiedName(obj), cv, t)
	}
	if v, ok := obj.(*types.Var); ok {
		return b.graph.NewVarRef(b.varFor(v))
	}
	return b.graph.NewOpaque(t)
}

// varFor resolves a source variable to its current SSA variable, creating an
// implicit entry-block variable for objects this function never assigns.
func (b *builder) varFor(v *types.Var) ir.VarID {
	if cur, ok := b.env[v]; ok {
		return cur
	}
	if imp, ok := b.implicit[v]; ok {
		return imp
	}
	imp := b.graph.NewImplicit(v.Name(), v.Type(), b.graph.Entry())
	b.implicit[v] = imp
	return imp
}

func (b *builder) convertLit(n *ast.BasicLit, t types.Type) ir.ExprID {
	cv, ok := b.pass.ConstVal(n)
	if !ok {
		return b.graph.NewOpaque(t)
	}
	if n.Kind == token.CHAR {
		if i, exact := charValue(cv); exact {
			return b.graph.NewCharLit(i)
		}
	}
	return b.graph.NewLit(cv, t)
}

func (b *builder) convertCall(n *ast.CallExpr, t types.Type) ir.ExprID {
	// A call-shaped node whose operand is a type is a conversion.
	if tv, ok := b.pass.TypesInfo.Types[n.Fun]; ok && tv.IsType() && len(n.Args) == 1 {
		return b.graph.NewConv(b.convert(n.Args[0]), t)
	}

	path, ok := b.pass.CalleePath(n)
	if !ok {
		return b.graph.NewOpaque(t)
	}

	// Ternary helpers are lowered to conditional expressions so that
	// conditional-assignment reasoning sees through them.
	if ci, ti, ei, isTernary := b.hooks.IsTernary(path, len(n.Args)); isTernary {
		return b.graph.NewCond(b.convert(n.Args[ci]), b.convert(n.Args[ti]), b.convert(n.Args[ei]))
	}

	args := make([]ir.ExprID, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.convert(a)
	}
	return b.graph.NewCall(path, t, args...)
}

func charValue(cv constant.Value) (rune, bool) {
	i, exact := constant.Int64Val(cv)
	return rune(i), exact
}

func qualifiedName(obj types.Object) string {
	if obj == nil {
		return ""
	}
	if pkg := obj.Pkg(); pkg != nil {
		return pkg.Path() + "." + obj.Name()
	}
	return obj.Name()
}
