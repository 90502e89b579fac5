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

package analysishelper

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"
)

func TestEnhancedPass_ConstVal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     string
		expected any // nil means "no constant value"
	}{
		{"integer literal", "1", int64(1)},
		{"negative literal", "-1", int64(-1)},
		{"binary expression", "1 + 1", int64(2)},
		{"parenthesized expression", "(2 - 2)", int64(0)},
		{"string literal", `"0"`, "0"},
		{"folded multiplication", "2 * 3", int64(6)},
		{"non-constant expression", "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := "package main\nfunc main() { var x int; print(x); _ = " + tt.code + " }"
			pass, file := newTestEnhancedPass(t, src)

			// Find the expression in the AST.
			var expr ast.Expr
			ast.Inspect(file, func(n ast.Node) bool {
				if assign, ok := n.(*ast.AssignStmt); ok && len(assign.Rhs) > 0 {
					expr = assign.Rhs[0]
					return false
				}
				return true
			})
			require.NotNil(t, expr, "expression not found in AST")

			v, ok := pass.ConstVal(expr)
			if tt.expected == nil {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.expected, constant.Val(v))
		})
	}
}

func TestEnhancedPass_IsNilLit(t *testing.T) {
	t.Parallel()

	src := "package main\nfunc main() { var q any = nil; _ = q; var x int; _ = x }"
	pass, file := newTestEnhancedPass(t, src)

	var values []ast.Expr
	ast.Inspect(file, func(n ast.Node) bool {
		if spec, ok := n.(*ast.ValueSpec); ok && len(spec.Values) > 0 {
			values = append(values, spec.Values[0])
		}
		return true
	})
	require.Len(t, values, 1)
	require.True(t, pass.IsNilLit(values[0]))

	var xIdent ast.Expr
	ast.Inspect(file, func(n ast.Node) bool {
		if assign, ok := n.(*ast.AssignStmt); ok && len(assign.Rhs) > 0 {
			xIdent = assign.Rhs[len(assign.Rhs)-1]
		}
		return true
	})
	require.NotNil(t, xIdent)
	require.False(t, pass.IsNilLit(xIdent))
}

func TestEnhancedPass_CalleePath(t *testing.T) {
	t.Parallel()

	src := `package main
func helper(b bool) {}
func main() {
	helper(true)
	f := helper
	f(true)
}`
	pass, file := newTestEnhancedPass(t, src)

	var calls []*ast.CallExpr
	ast.Inspect(file, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			calls = append(calls, call)
		}
		return true
	})
	require.Len(t, calls, 2)

	path, ok := pass.CalleePath(calls[0])
	require.True(t, ok)
	require.Equal(t, "test.helper", path)

	// Calls of function values have no static callee.
	_, ok = pass.CalleePath(calls[1])
	require.False(t, ok)
}

// newTestEnhancedPass creates an *analysishelper.EnhancedPass from the given Go source code for testing purposes.
func newTestEnhancedPass(t *testing.T, src string) (*EnhancedPass, *ast.File) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)

	conf := types.Config{}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	_, err = conf.Check("test", fset, []*ast.File{file}, info)
	require.NoError(t, err)

	pass := &analysis.Pass{TypesInfo: info, Fset: fset}
	return NewEnhancedPass(pass), file
}
