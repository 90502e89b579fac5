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

// Package implication hosts the guard implication engine: given that guard
// g1 is known to have evaluated to b1, it derives whether some other guard
// g2 is thereby forced to a particular value. The engine is sound but
// deliberately incomplete: a missing answer means "unknown", never "not
// forced".
//
// Reasoning is organized in three strictly increasing tiers. Each tier
// re-exports the previous one as a sub-relation and adds rules that require
// progressively more context: tier 1 is purely syntactic peeling, tier 2
// adds reasoning over SSA definitions and conditional assignment, and
// tier 3 generalizes conditional assignment to phi-node merges using the
// full equality and bound machinery. Callers pick the cheapest tier
// sufficient for their precision needs; results are memoized per
// (g1, b1, g2, tier) key with write-once semantics, so concurrent
// derivations of the same fact are idempotent.
package implication

import (
	"sync"

	"go.uber.org/entail/hook"
	"go.uber.org/entail/ir"
	"go.uber.org/entail/linear"
)

// Tier selects how much reasoning machinery Implies may use.
type Tier uint8

const (
	// TierSyntactic peels guard structure only.
	TierSyntactic Tier = iota + 1
	// TierSSA additionally follows SSA definitions and forces ternary-style
	// conditional assignments.
	TierSSA
	// TierFull additionally reasons through phi-node merges, numeric
	// bounds, and nil tracking.
	TierFull
)

// A NonNilOracle is an external collaborator that certifies expressions as
// never evaluating to nil. The engine consults it only for the tier-3 null
// tracking rule; a nil oracle simply disables that rule.
type NonNilOracle interface {
	AlwaysNonNil(g *ir.Graph, e ir.ExprID) bool
}

// An Engine answers implication queries over one frozen program graph.
// All methods are safe for concurrent use.
type Engine struct {
	graph  *ir.Graph
	hooks  *hook.Funcs
	nonnil NonNilOracle

	mu    sync.RWMutex
	memo  *factTable
	norms map[normKey]normResult
}

type normKey struct {
	expr ir.ExprID
	v    ir.VarID
}

type normResult struct {
	form linear.Form
	ok   bool
}

// An Option configures an Engine.
type Option func(*Engine)

// WithHooks supplies the helper-function set used to recognize
// precondition-check calls. Defaults to hook.Default().
func WithHooks(f *hook.Funcs) Option {
	return func(e *Engine) { e.hooks = f }
}

// WithNonNilOracle supplies the oracle for the tier-3 null tracking rule.
func WithNonNilOracle(o NonNilOracle) Option {
	return func(e *Engine) { e.nonnil = o }
}

// NewEngine creates an engine over the given frozen graph.
func NewEngine(g *ir.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph: g,
		hooks: hook.Default(),
		memo:  newFactTable(),
		norms: make(map[normKey]normResult),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Implies reports whether every execution observing guard g1 evaluate to b1
// also observes guard g2 evaluate to some fixed value b2, using at most the
// rules of the given tier. The second result distinguishes a derived fact
// from "no rule matched"; callers must treat the latter as unknown.
func (e *Engine) Implies(g1 ir.ExprID, b1 bool, g2 ir.ExprID, tier Tier) (b2 bool, ok bool) {
	key := factKey{G1: g1, B1: b1, G2: g2, Tier: tier}
	e.mu.RLock()
	res, hit := e.memo.load(key)
	e.mu.RUnlock()
	if hit {
		return res.B2, res.Proven
	}

	b2, ok = e.implies(g1, b1, g2, tier)

	e.mu.Lock()
	// Write-once per key: purity guarantees a racing derivation computed
	// the identical result, so the first store wins and the rest are no-ops.
	e.memo.store(key, factResult{B2: b2, Proven: ok})
	e.mu.Unlock()
	return b2, ok
}

// implies dispatches across the tiers. Each tier explicitly re-exports the
// previous one rather than mixing rules, keeping tiers independently
// meaningful and cacheable.
func (e *Engine) implies(g1 ir.ExprID, b1 bool, g2 ir.ExprID, tier Tier) (bool, bool) {
	atoms := e.forcedAtoms(g1, b1, tier)
	if b2, ok := e.tier1(atoms, g2); ok {
		return b2, true
	}
	if tier >= TierSSA {
		if b2, ok := e.tier2(g1, b1, atoms, g2, tier); ok {
			return b2, true
		}
	}
	if tier >= TierFull {
		if b2, ok := e.tier3(g1, b1, atoms, g2); ok {
			return b2, true
		}
	}
	return false, false
}

// normalize is linear.Normalize memoized per (expr, variable) key for the
// lifetime of the engine.
func (e *Engine) normalize(expr ir.ExprID, v ir.VarID) (linear.Form, bool) {
	key := normKey{expr: expr, v: v}
	e.mu.RLock()
	res, hit := e.norms[key]
	e.mu.RUnlock()
	if hit {
		return res.form, res.ok
	}
	form, ok := linear.Normalize(e.graph, expr, v)
	e.mu.Lock()
	if _, dup := e.norms[key]; !dup {
		e.norms[key] = normResult{form: form, ok: ok}
	}
	e.mu.Unlock()
	return form, ok
}
