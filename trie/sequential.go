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

// Matcher is anything that can test a concrete path, returning the
// parameters it captured. Glob, Regex and PrefixAdding patterns satisfy
// this (via pathpattern.Pattern.Match) without needing a TriePath.
type Matcher func(path string) (params map[string]string, ok bool)

type sequentialEntry[V any] struct {
	match Matcher
	value V
}

// SequentialRouter is the linear-scan fallback for routes whose pattern
// cannot be indexed by Trie (no stable TriePath): it tries each registered
// matcher in registration order and returns every one that matches, in
// that order, just as Trie.Lookup returns every terminal it reaches.
type SequentialRouter[V any] struct {
	entries []sequentialEntry[V]
}

// NewSequentialRouter creates an empty SequentialRouter.
func NewSequentialRouter[V any]() *SequentialRouter[V] {
	return &SequentialRouter[V]{}
}

// Add appends a matcher/value pair, preserving registration order.
func (s *SequentialRouter[V]) Add(match Matcher, value V) {
	s.entries = append(s.entries, sequentialEntry[V]{match: match, value: value})
}

// SequentialMatch is one matching entry: its value and captured parameters.
type SequentialMatch[V any] struct {
	Value  V
	Params map[string]string
}

// Lookup returns every entry whose matcher accepts path, in registration
// order.
func (s *SequentialRouter[V]) Lookup(path string) []SequentialMatch[V] {
	var out []SequentialMatch[V]
	for _, e := range s.entries {
		if params, ok := e.match(path); ok {
			out = append(out, SequentialMatch[V]{Value: e.value, Params: params})
		}
	}
	return out
}

// Len reports how many entries are registered.
func (s *SequentialRouter[V]) Len() int { return len(s.entries) }
