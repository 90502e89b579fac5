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

// Package frontend converts Go functions into the program graph the
// reasoning core consumes and runs the redundant-condition check on the
// result: a branch condition whose value is implied by a dominating guard
// can never change the outcome and is reported.
package frontend

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"strings"

	"go.uber.org/entail/config"
	"go.uber.org/entail/hook"
	"go.uber.org/entail/implication"
	"go.uber.org/entail/ir"
	"go.uber.org/entail/util/analysishelper"
	"go.uber.org/entail/util/asthelper"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"
)

const _doc = "Build the program graph for each function and check for branch conditions whose " +
	"value is already implied by a dominating guard."

// Analyzer converts each function into SSA form and collects the
// redundant-condition diagnostics for the top-level analyzer to report.
var Analyzer = &analysis.Analyzer{
	Name:       "entail_frontend",
	Doc:        _doc,
	Run:        analysishelper.WrapRun(run),
	ResultType: reflect.TypeOf((*analysishelper.Result[[]analysis.Diagnostic])(nil)),
	Requires:   []*analysis.Analyzer{config.Analyzer, ctrlflow.Analyzer},
}

func run(p *analysis.Pass) ([]analysis.Diagnostic, error) {
	pass := analysishelper.NewEnhancedPass(p)
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	cfgs := pass.ResultOf[ctrlflow.Analyzer].(*ctrlflow.CFGs)

	hooks := hook.Default()
	if conf.HookConfigFile != "" {
		if err := hooks.LoadFile(conf.HookConfigFile); err != nil {
			return nil, fmt.Errorf("load hook config: %w", err)
		}
	}

	tier := effectiveTier(pass.Pkg.Path(), conf.MaxTier)

	var diags []analysis.Diagnostic
	for _, file := range pass.Files {
		if asthelper.DocContains(file.Doc, config.EntailNoCheckString) {
			continue
		}
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			g := cfgs.FuncDecl(fd)
			if g == nil || len(g.Blocks) == 0 {
				continue
			}
			fn := build(pass, hooks, fd, g)
			diags = append(diags, checkFunc(pass, tier, hooks, fn)...)
		}
	}
	return diags, nil
}

// effectiveTier returns the implication tier to use for a package: the
// configured maximum, except that the checker's own packages always get the
// full engine regardless of configuration.
func effectiveTier(pkgPath string, max implication.Tier) implication.Tier {
	if strings.HasPrefix(pkgPath, config.EntailPkgPathPrefix) {
		return implication.TierFull
	}
	return max
}

// checkFunc runs the implication engine over one function: for every branch
// condition, it asks whether any guard controlling the branch point already
// forces the condition's value.
func checkFunc(pass *analysishelper.EnhancedPass, tier implication.Tier, hooks *hook.Funcs, fn *Func) []analysis.Diagnostic {
	g := fn.Graph
	engine := implication.NewEngine(g,
		implication.WithHooks(hooks),
		implication.WithNonNilOracle(nonNilSyntax{}))

	var diags []analysis.Diagnostic
	reported := make(map[token.Pos]bool)
	for bi := 0; bi < g.NumBlocks(); bi++ {
		b2 := ir.BlockID(bi)
		g2 := g.Block(b2).Cond
		if g2 == ir.NoExpr {
			continue
		}
		pos, hasPos := fn.Pos[g2]
		if !hasPos || reported[pos] {
			continue
		}
		for ai := 0; ai < g.NumBlocks(); ai++ {
			a := ir.BlockID(ai)
			g1 := g.Block(a).Cond
			if g1 == ir.NoExpr || a == b2 {
				continue
			}
			br, controlled := g.ControlledBy(b2, g1)
			if !controlled {
				continue
			}
			val, proven := engine.Implies(g1, br, g2, tier)
			if !proven {
				continue
			}
			reported[pos] = true
			diags = append(diags, analysis.Diagnostic{
				Pos: pos,
				Message: fmt.Sprintf("condition `%s` is always %t: already implied by `%s`",
					asthelper.PrintExpr(fn.Src[g2], pass.Pass, true /* isShortenExpr */),
					val,
					asthelper.PrintExpr(fn.Src[g1], pass.Pass, true /* isShortenExpr */)),
			})
			break
		}
	}
	return diags
}

// nonNilSyntax certifies expressions as non-nil on syntax alone: literals of
// concrete values and address-of operations can never evaluate to nil.
type nonNilSyntax struct{}

func (nonNilSyntax) AlwaysNonNil(g *ir.Graph, e ir.ExprID) bool {
	switch n := g.Expr(g.Unparen(e)).(type) {
	case *ir.Lit:
		return n.Value != nil
	case *ir.Unary:
		return n.Op == token.AND
	}
	return false
}
