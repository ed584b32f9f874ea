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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieExactBeatsParam(t *testing.T) {
	tr := New[string]()
	tr.Insert("/users/:", "param-route")
	tr.Insert("/users/me", "exact-route")

	matches := tr.Lookup("/users/me")
	require.Len(t, matches, 2)
	// exact branch is tried before param branch
	assert.Equal(t, []string{"exact-route"}, matches[0].Values)
	assert.Equal(t, []string{"param-route"}, matches[1].Values)
	assert.Equal(t, []string{"me"}, matches[1].Captures)
}

func TestTrieCatchAll(t *testing.T) {
	tr := New[string]()
	tr.Insert("/files/**", "catch-all")

	matches := tr.Lookup("/files/a/b/c.txt")
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"a/b/c.txt"}, matches[0].Captures)
}

func TestTrieNoMatch(t *testing.T) {
	tr := New[string]()
	tr.Insert("/users/:", "param-route")
	matches := tr.Lookup("/orders/1")
	assert.Empty(t, matches)
}

func TestSequentialRouterOrder(t *testing.T) {
	sr := NewSequentialRouter[string]()
	sr.Add(func(path string) (map[string]string, bool) { return nil, path == "/a" }, "first")
	sr.Add(func(path string) (map[string]string, bool) { return nil, true }, "second")

	matches := sr.Lookup("/a")
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Value)
	assert.Equal(t, "second", matches[1].Value)
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(256)
	paths := []string{"/a", "/b", "/c/d/e"}
	for _, p := range paths {
		bf.Add(p)
	}
	for _, p := range paths {
		assert.True(t, bf.Test(p))
	}
}

func TestStaticTable(t *testing.T) {
	st := NewStaticTable[string](10)
	st.Add("/health", "health-handler")

	assert.Equal(t, []string{"health-handler"}, st.Lookup("/health"))
	assert.Nil(t, st.Lookup("/never-registered"))
}
