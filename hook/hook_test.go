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

package hook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPreconditions(t *testing.T) {
	t.Parallel()

	f := Default()

	tests := []struct {
		name    string
		fun     string
		numArgs int
		wantArg int
		ok      bool
	}{
		{"require.True", "github.com/stretchr/testify/require.True", 2, 1, true},
		{"require.Truef", "github.com/stretchr/testify/require.Truef", 3, 1, true},
		{"assert.True", "github.com/stretchr/testify/assert.True", 2, 1, true},
		{"assertions method", "github.com/stretchr/testify/require.Assertions.True", 2, 1, true},
		{"bare assert helper", "example.com/internal/assertion.Assert", 1, 0, true},
		{"require.False not a truth assertion", "github.com/stretchr/testify/require.False", 2, 0, false},
		{"unrelated function", "example.com/pkg.Check", 2, 0, false},
		{"too few arguments", "github.com/stretchr/testify/require.True", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			arg, ok := f.PreconditionArg(tt.fun, tt.numArgs)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.wantArg, arg)
			}
		})
	}
}

func TestDefaultTernaries(t *testing.T) {
	t.Parallel()

	f := Default()

	cond, onTrue, onFalse, ok := f.IsTernary("github.com/samber/lo.Ternary", 3)
	require.True(t, ok)
	require.Equal(t, []int{0, 1, 2}, []int{cond, onTrue, onFalse})

	// Extra leading arguments shift the helper triple to the tail.
	cond, onTrue, onFalse, ok = f.IsTernary("github.com/samber/lo.Ternary", 4)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, []int{cond, onTrue, onFalse})

	_, _, _, ok = f.IsTernary("github.com/samber/lo.Ternary", 2)
	require.False(t, ok)
	_, _, _, ok = f.IsTernary("example.com/pkg.Pick", 3)
	require.False(t, ok)
}

func TestZeroValueRecognizesNothing(t *testing.T) {
	t.Parallel()

	var f Funcs
	_, ok := f.PreconditionArg("github.com/stretchr/testify/require.True", 2)
	require.False(t, ok)
	_, _, _, ok = f.IsTernary("github.com/samber/lo.Ternary", 3)
	require.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
preconditions:
  - name: '^example\.com/util\.Check$'
    arg: 0
ternaries:
  - name: '^example\.com/util\.If$'
`), 0o600))

	f := Default()
	require.NoError(t, f.LoadFile(path))

	arg, ok := f.PreconditionArg("example.com/util.Check", 1)
	require.True(t, ok)
	require.Equal(t, 0, arg)

	_, _, _, ok = f.IsTernary("example.com/util.If", 3)
	require.True(t, ok)

	// Built-ins stay recognized after loading.
	arg, ok = f.PreconditionArg("github.com/stretchr/testify/require.True", 2)
	require.True(t, ok)
	require.Equal(t, 1, arg)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	f := Default()
	require.ErrorContains(t, f.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")), "read hook config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("preconditions: {not a list}"), 0o600))
	require.ErrorContains(t, f.LoadFile(bad), "parse hook config")

	badRe := filepath.Join(t.TempDir(), "badre.yaml")
	require.NoError(t, os.WriteFile(badRe, []byte("preconditions:\n  - name: '('\n    arg: 0\n"), 0o600))
	require.ErrorContains(t, f.LoadFile(badRe), "precondition pattern")

	negArg := filepath.Join(t.TempDir(), "neg.yaml")
	require.NoError(t, os.WriteFile(negArg, []byte("preconditions:\n  - name: '^x$'\n    arg: -1\n"), 0o600))
	require.ErrorContains(t, f.LoadFile(negArg), "negative arg index")
}
