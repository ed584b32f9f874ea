// Copyright 2025 The Rivaas Authors
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

package trie

// BloomFilter is a fixed-size FNV-1a multi-seed bloom filter used to gate
// negative lookups ahead of the static-path hash map: a Test() miss proves
// the path was never registered without touching the map at all, which
// matters once a service has thousands of static routes.
type BloomFilter struct {
	bits  []uint64
	size  uint64
	seeds []uint64
}

// DefaultSeeds mirrors the component this is grounded on: a small, fixed
// set of FNV-1a seeds chosen for low collision rates at typical route
// counts.
var DefaultSeeds = []uint64{0x9e3779b97f4a7c15, 0xc2b2ae3d27d4eb4f, 0x165667b19e3779f9}

// NewBloomFilter creates a filter sized for roughly size bits, using
// DefaultSeeds unless seeds is non-empty.
func NewBloomFilter(size int, seeds ...uint64) *BloomFilter {
	if size <= 0 {
		size = 1024
	}
	if len(seeds) == 0 {
		seeds = DefaultSeeds
	}
	words := (size + 63) / 64
	return &BloomFilter{
		bits:  make([]uint64, words),
		size:  uint64(words * 64),
		seeds: seeds,
	}
}

func (b *BloomFilter) hash(s string, seed uint64) uint64 {
	h := seed
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h % b.size
}

// Add records s as present.
func (b *BloomFilter) Add(s string) {
	for _, seed := range b.seeds {
		idx := b.hash(s, seed)
		b.bits[idx/64] |= 1 << (idx % 64)
	}
}

// Test reports whether s might be present (false means definitely absent).
func (b *BloomFilter) Test(s string) bool {
	for _, seed := range b.seeds {
		idx := b.hash(s, seed)
		if b.bits[idx/64]&(1<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

// StaticTable is the compiled O(1) fast path for purely literal (Exact)
// routes: a bloom filter gates the hash-map lookup so a miss on a
// never-registered path never touches the map.
type StaticTable[V any] struct {
	bloom *BloomFilter
	paths map[string][]V
}

// NewStaticTable creates an empty StaticTable sized for an expected route
// count.
func NewStaticTable[V any](expectedRoutes int) *StaticTable[V] {
	size := expectedRoutes * 10
	if size < 1024 {
		size = 1024
	}
	return &StaticTable[V]{
		bloom: NewBloomFilter(size),
		paths: make(map[string][]V),
	}
}

// Add registers value under the literal path.
func (s *StaticTable[V]) Add(path string, value V) {
	s.bloom.Add(path)
	s.paths[path] = append(s.paths[path], value)
}

// Lookup returns the values registered for path, or nil if none. The bloom
// filter is consulted first; only a possible-positive reaches the map.
func (s *StaticTable[V]) Lookup(path string) []V {
	if !s.bloom.Test(path) {
		return nil
	}
	return s.paths[path]
}

// Len reports how many distinct literal paths are registered.
func (s *StaticTable[V]) Len() int { return len(s.paths) }
