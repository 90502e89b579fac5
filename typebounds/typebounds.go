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

// Package typebounds supplies the representable numeric range of primitive
// types, used as fallback bounds and to decide whether a conversion widens.
package typebounds

import (
	"go/types"
	"math"
)

// widthBytes returns the storage width in bytes of a fixed-width basic kind,
// or 0 if the kind has no fixed integer width. Platform-dependent int/uint
// are treated as 64-bit, matching the targets we analyze.
func widthBytes(k types.BasicKind) int {
	switch k {
	case types.Bool, types.UntypedBool:
		return 1
	case types.Int8, types.Uint8:
		return 1
	case types.Int16, types.Uint16:
		return 2
	case types.Int32, types.Uint32:
		return 4
	case types.Int, types.Int64, types.Uint, types.Uint64, types.Uintptr, types.UntypedInt, types.UntypedRune:
		return 8
	}
	return 0
}

func isUnsigned(k types.BasicKind) bool {
	switch k {
	case types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64, types.Uintptr:
		return true
	}
	return false
}

// Bounds returns the representable range of a primitive type as finite
// floats: [-2^(8n-1), 2^(8n-1)-1] for signed integers of width n bytes,
// [0, 2^(8n)-1] for unsigned ones, [0, 1] for booleans, and
// (-Inf, +Inf) for floating-point and any non-primitive type. It is a pure
// lookup with no failure mode.
func Bounds(t types.Type) (lo, hi float64) {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return math.Inf(-1), math.Inf(1)
	}
	k := basic.Kind()
	switch {
	case k == types.Bool || k == types.UntypedBool:
		return 0, 1
	case basic.Info()&types.IsInteger != 0:
		n := widthBytes(k)
		if n == 0 {
			return math.Inf(-1), math.Inf(1)
		}
		if isUnsigned(k) {
			return 0, math.Pow(2, float64(8*n)) - 1
		}
		half := math.Pow(2, float64(8*n-1))
		return -half, half - 1
	}
	return math.Inf(-1), math.Inf(1)
}

// Widens reports whether converting from type `from` to type `to` can never
// lose a value: the representable range of the target contains that of the
// source. Conversions failing this test are narrowing and invalidate linear
// normalization even when lossless for a specific runtime value.
func Widens(from, to types.Type) bool {
	if from == nil || to == nil {
		return false
	}
	fromLo, fromHi := Bounds(from)
	toLo, toHi := Bounds(to)
	return toLo <= fromLo && fromHi <= toHi
}

// Contains reports whether the representable range of t includes the exact
// integer i.
func Contains(t types.Type, i int64) bool {
	lo, hi := Bounds(t)
	return lo <= float64(i) && float64(i) <= hi
}
