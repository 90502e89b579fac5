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
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/entail/config"
	"go.uber.org/entail/implication"
	"go.uber.org/entail/ir"
	"go.uber.org/goleak"
)

func TestEffectiveTier(t *testing.T) {
	t.Parallel()

	// Regular packages honor the configured maximum.
	require.Equal(t, implication.TierSyntactic, effectiveTier("example.com/pkg", implication.TierSyntactic))
	require.Equal(t, implication.TierSSA, effectiveTier("go.uber.org/other", implication.TierSSA))

	// The checker's own packages always run the full engine.
	require.Equal(t, implication.TierFull, effectiveTier(config.EntailPkgPathPrefix, implication.TierSyntactic))
	require.Equal(t, implication.TierFull, effectiveTier(config.EntailPkgPathPrefix+"/frontend", implication.TierSSA))
}

func TestNonNilSyntax(t *testing.T) {
	t.Parallel()

	g := ir.New()
	ptr := types.NewPointer(types.Typ[types.Int])

	lit := g.NewIntLit(5)
	nilLit := g.NewNilLit()
	addr := g.NewUnary(token.AND, g.NewOpaque(types.Typ[types.Int]))
	neg := g.NewUnary(token.SUB, g.NewIntLit(1))
	ref := g.NewVarRef(g.NewImplicit("p", ptr, g.Entry()))
	call := g.NewCall("pkg.load", ptr)
	g.Freeze()

	oracle := nonNilSyntax{}
	require.True(t, oracle.AlwaysNonNil(g, lit))
	require.True(t, oracle.AlwaysNonNil(g, addr))
	require.False(t, oracle.AlwaysNonNil(g, nilLit))
	require.False(t, oracle.AlwaysNonNil(g, neg))
	require.False(t, oracle.AlwaysNonNil(g, ref))
	require.False(t, oracle.AlwaysNonNil(g, call))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
