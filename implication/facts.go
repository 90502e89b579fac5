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

package implication

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"

	"github.com/klauspost/compress/s2"
	"go.uber.org/entail/ir"
	"go.uber.org/entail/util/orderedmap"
)

// factKey identifies one memoized implication query.
type factKey struct {
	G1   ir.ExprID
	B1   bool
	G2   ir.ExprID
	Tier Tier
}

// factResult is the memoized outcome: Proven distinguishes a derived fact
// from a recorded "no rule matched".
type factResult struct {
	B2     bool
	Proven bool
}

// factTable is a write-once view over an insertion-ordered map. Insertion
// order makes the encoded snapshot deterministic, which keeps build caches
// and golden files stable.
type factTable struct {
	m *orderedmap.OrderedMap[factKey, factResult]
}

func newFactTable() *factTable {
	return &factTable{m: orderedmap.New[factKey, factResult]()}
}

func (t *factTable) load(k factKey) (factResult, bool) {
	return t.m.Load(k)
}

// store records the result for a key. The first store for a key wins; a
// duplicate store is a no-op since a racing derivation over the same pure
// inputs must have computed the identical result.
func (t *factTable) store(k factKey, r factResult) {
	if _, ok := t.m.Load(k); ok {
		return
	}
	t.m.Store(k, r)
}

// SaveFacts writes a snapshot of the memoized implication table to w, gob
// encoded inside an s2 compressed frame. The snapshot is only valid for the
// same program graph it was derived from and must be discarded when the
// graph changes.
func (e *Engine) SaveFacts(w io.Writer) (err error) {
	sw := s2.NewWriter(w)
	defer func() {
		if cerr := sw.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	e.mu.RLock()
	defer e.mu.RUnlock()
	return gob.NewEncoder(sw).Encode(e.memo.m)
}

// LoadFacts seeds the memo table from a snapshot previously written by
// SaveFacts. Existing entries win over snapshot entries, preserving
// write-once semantics.
func (e *Engine) LoadFacts(r io.Reader) error {
	loaded := orderedmap.New[factKey, factResult]()
	if err := gob.NewDecoder(s2.NewReader(r)).Decode(loaded); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	loaded.OrderedRange(func(k factKey, r factResult) bool {
		e.memo.store(k, r)
		return true
	})
	return nil
}

// FactsLen returns the number of memoized implication queries.
func (e *Engine) FactsLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memo.m.Len()
}

// FactsSnapshot returns the serialized snapshot as a byte slice; a
// convenience over SaveFacts for embedding into analysis facts.
func (e *Engine) FactsSnapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.SaveFacts(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
