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
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// EnhancedPass is a drop-in replacement for `*analysis.Pass` that provides additional helper methods
// to make it easier to work with the analysis pass.
type EnhancedPass struct {
	*analysis.Pass
}

// NewEnhancedPass creates a new EnhancedPass from the given *analysis.Pass.
func NewEnhancedPass(pass *analysis.Pass) *EnhancedPass {
	return &EnhancedPass{Pass: pass}
}

// ConstVal returns the compile-time constant value of the given expression, if it has one. For
// example, an untyped constant literal, a named constant, or a binary expression over constants,
// e.g., 1 - 1, all have constant values.
func (p *EnhancedPass) ConstVal(expr ast.Expr) (constant.Value, bool) {
	tv, ok := p.TypesInfo.Types[expr]
	if !ok || tv.Value == nil {
		return nil, false
	}
	return tv.Value, true
}

// IsNilLit returns if the given expression is the predeclared nil identifier.
func (p *EnhancedPass) IsNilLit(expr ast.Expr) bool {
	tv, ok := p.TypesInfo.Types[expr]
	return ok && tv.IsNil()
}

// CalleePath returns the fully qualified path of the static callee of the given call expression,
// e.g., "github.com/stretchr/testify/require.True" for functions or
// "github.com/stretchr/testify/assert.Assertions.True" for methods (value or pointer receivers
// are treated alike). It returns false for calls without a static callee (e.g., calls of function
// values or interface methods).
func (p *EnhancedPass) CalleePath(call *ast.CallExpr) (string, bool) {
	fn, ok := typeutil.Callee(p.TypesInfo, call).(*types.Func)
	if !ok {
		return "", false
	}

	name := fn.Name()
	if recv := fn.Type().(*types.Signature).Recv(); recv != nil {
		t := recv.Type()
		if ptr, isPtr := t.(*types.Pointer); isPtr {
			t = ptr.Elem()
		}
		named, isNamed := t.(*types.Named)
		if !isNamed {
			return "", false
		}
		name = named.Obj().Name() + "." + name
	}
	if pkg := fn.Pkg(); pkg != nil {
		return pkg.Path() + "." + name, true
	}
	return name, true
}
