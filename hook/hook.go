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

// Package hook encodes knowledge about well-known standard or 3rd party
// helper functions so the core can see through them: precondition-check
// helpers (assertion-style calls that assert the truth value of one
// argument outward, e.g. `assert.True(t, cond)`) and ternary helpers
// (conditional-selection functions like `lo.Ternary(cond, a, b)` that the
// frontend lowers to conditional expressions). The membership of these sets
// is configuration, not core logic: built-in defaults can be extended from
// a YAML file.
package hook

import "regexp"

// A precondition matches assertion-style helpers by fully qualified name
// and names which argument carries the asserted condition.
type precondition struct {
	nameRegex *regexp.Regexp
	argIndex  int
}

// A ternary matches conditional-selection helpers whose final three
// arguments are (cond, onTrue, onFalse).
type ternary struct {
	nameRegex *regexp.Regexp
}

// Funcs is the set of recognized helper functions. The zero value
// recognizes nothing; use Default for the built-in set.
type Funcs struct {
	preconditions []precondition
	ternaries     []ternary
}

// Default returns the built-in helper set: testify's truth assertions and
// the widely used samber/lo ternary helper.
func Default() *Funcs {
	return &Funcs{
		preconditions: []precondition{
			{nameRegex: regexp.MustCompile(`^github\.com/stretchr/testify/(assert|require)\.(Assertions\.)?Truef?$`), argIndex: 1},
			{nameRegex: regexp.MustCompile(`(^|/)assertions?\.Assertf?$`), argIndex: 0},
		},
		ternaries: []ternary{
			{nameRegex: regexp.MustCompile(`^github\.com/samber/lo\.Ternary$`)},
		},
	}
}

// PreconditionArg reports whether the named function is a recognized
// precondition-check helper, returning the index of the asserted argument.
func (f *Funcs) PreconditionArg(fun string, numArgs int) (int, bool) {
	for _, p := range f.preconditions {
		if p.nameRegex.MatchString(fun) && p.argIndex < numArgs {
			return p.argIndex, true
		}
	}
	return 0, false
}

// IsTernary reports whether the named function is a recognized ternary
// helper, returning the indices of the condition, true-branch, and
// false-branch arguments (always the final three).
func (f *Funcs) IsTernary(fun string, numArgs int) (cond, onTrue, onFalse int, ok bool) {
	if numArgs < 3 {
		return 0, 0, 0, false
	}
	for _, t := range f.ternaries {
		if t.nameRegex.MatchString(fun) {
			return numArgs - 3, numArgs - 2, numArgs - 1, true
		}
	}
	return 0, 0, 0, false
}
