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

package typebounds_test

import (
	"go/types"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/entail/typebounds"
)

func TestBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    types.Type
		lo, hi float64
	}{
		{"int8", types.Typ[types.Int8], -128, 127},
		{"int16", types.Typ[types.Int16], -32768, 32767},
		{"int32", types.Typ[types.Int32], -2147483648, 2147483647},
		{"uint8", types.Typ[types.Uint8], 0, 255},
		{"uint16", types.Typ[types.Uint16], 0, 65535},
		{"bool", types.Typ[types.Bool], 0, 1},
		{"rune alias", types.Typ[types.Rune], -2147483648, 2147483647},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lo, hi := typebounds.Bounds(tt.typ)
			require.Equal(t, tt.lo, lo)
			require.Equal(t, tt.hi, hi)
		})
	}
}

func TestBoundsUnbounded(t *testing.T) {
	t.Parallel()

	for _, typ := range []types.Type{
		types.Typ[types.Float32],
		types.Typ[types.Float64],
		types.Typ[types.String],
		types.NewSlice(types.Typ[types.Int]),
	} {
		lo, hi := typebounds.Bounds(typ)
		require.True(t, math.IsInf(lo, -1), "lo of %v", typ)
		require.True(t, math.IsInf(hi, 1), "hi of %v", typ)
	}
}

func TestWidens(t *testing.T) {
	t.Parallel()

	i8, i16, i32 := types.Typ[types.Int8], types.Typ[types.Int16], types.Typ[types.Int32]
	u8, u16 := types.Typ[types.Uint8], types.Typ[types.Uint16]

	require.True(t, typebounds.Widens(i8, i16))
	require.True(t, typebounds.Widens(i8, i32))
	require.True(t, typebounds.Widens(u8, u16))
	// Unsigned fits into the next wider signed type.
	require.True(t, typebounds.Widens(u8, i16))

	require.False(t, typebounds.Widens(i16, i8))
	require.False(t, typebounds.Widens(i8, u16))
	// Same-width signed/unsigned do not contain each other.
	require.False(t, typebounds.Widens(i8, u8))
	require.False(t, typebounds.Widens(u8, i8))
}

func TestContains(t *testing.T) {
	t.Parallel()

	i8 := types.Typ[types.Int8]
	require.True(t, typebounds.Contains(i8, 127))
	require.True(t, typebounds.Contains(i8, -128))
	require.False(t, typebounds.Contains(i8, 128))
	require.False(t, typebounds.Contains(i8, -129))

	u8 := types.Typ[types.Uint8]
	require.True(t, typebounds.Contains(u8, 0))
	require.False(t, typebounds.Contains(u8, -1))

	// Unbounded types contain everything.
	require.True(t, typebounds.Contains(types.NewSlice(types.Typ[types.Int]), 1<<40))
}