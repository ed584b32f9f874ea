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

// Package trie implements the routing trie (component A/D): a generic
// segment trie keyed by a pattern's TriePath skeleton, with node types for
// exact literal segments, named parameters, and a trailing catch-all. Each
// node holds exactly one path segment; chains of single-child nodes are not
// merged. Patterns whose kind has no TriePath (Prefix, Glob, Regex,
// PrefixAdding) are not trie-indexable; callers fall back to
// SequentialRouter for those.
package trie

import "strings"

type nodeKind uint8

const (
	nodeRoot nodeKind = iota
	nodeExact
	nodeParam
	nodeCatchAll
)

// node is one segment of the trie. Children are indexed by their literal
// segment text; a node has at most one parameter child and one catch-all
// child, mirroring the "two reserved keys" rule of the component this is
// grounded on (radix.go's findChild: static children, then a single param
// edge, then a single wildcard edge).
type node[V any] struct {
	kind     nodeKind
	segment  string // literal text (nodeExact) or param name (nodeParam)
	children map[string]*node[V]
	param    *node[V]
	catchAll *node[V]
	values   []V
}

func newNode[V any](kind nodeKind, segment string) *node[V] {
	return &node[V]{kind: kind, segment: segment}
}

// Trie is a routing trie over "/"-delimited skeleton paths, one node per
// segment.
type Trie[V any] struct {
	root *node[V]
}

// New creates an empty Trie.
func New[V any]() *Trie[V] {
	return &Trie[V]{root: newNode[V](nodeRoot, "")}
}

// Insert indexes value under triePath (typically a Pattern's
// TriePath/Skeleton: literal segments verbatim, ":" for a captured
// parameter, "**" for a trailing catch-all). Multiple values may share an
// identical triePath (e.g. two methods on the same path); they are tried in
// insertion order by Match's caller.
func (t *Trie[V]) Insert(triePath string, value V) {
	segments := splitSegments(triePath)
	cur := t.root
	for i, seg := range segments {
		switch {
		case seg == "**" && i == len(segments)-1:
			if cur.catchAll == nil {
				cur.catchAll = newNode[V](nodeCatchAll, "")
			}
			cur = cur.catchAll
		case seg == ":":
			if cur.param == nil {
				cur.param = newNode[V](nodeParam, seg)
			}
			cur = cur.param
		default:
			if cur.children == nil {
				cur.children = make(map[string]*node[V])
			}
			child, ok := cur.children[seg]
			if !ok {
				child = newNode[V](nodeExact, seg)
				cur.children[seg] = child
			}
			cur = child
		}
	}
	cur.values = append(cur.values, value)
}

// Match is one successful trie lookup: the values attached to the
// terminal node and the path segments captured by parameter/catch-all
// nodes along the way, in declaration order (caller maps them back to
// parameter names using the originating Pattern.ParamNames()).
type Match[V any] struct {
	Values   []V
	Captures []string
}

// Lookup walks the trie for path, trying at each level exact-child, then
// parameter-child, then catch-all-child — exactly the priority order of
// the component this is grounded on. It returns every terminal reached by
// a structurally valid walk; callers still need to run full predicate
// evaluation (routing.Evaluate) since the trie only resolves path shape.
func (t *Trie[V]) Lookup(path string) []Match[V] {
	segments := splitSegments(path)
	var out []Match[V]
	lookup(t.root, segments, nil, &out)
	return out
}

func lookup[V any](n *node[V], segments []string, captures []string, out *[]Match[V]) {
	if len(segments) == 0 {
		if len(n.values) > 0 {
			*out = append(*out, Match[V]{Values: n.values, Captures: captures})
		}
		return
	}

	seg := segments[0]
	rest := segments[1:]

	if n.children != nil {
		if child, ok := n.children[seg]; ok {
			lookup(child, rest, captures, out)
		}
	}
	if n.param != nil {
		lookup(n.param, rest, append(append([]string{}, captures...), seg), out)
	}
	if n.catchAll != nil {
		tail := strings.Join(segments, "/")
		if len(n.catchAll.values) > 0 {
			*out = append(*out, Match[V]{Values: n.catchAll.values, Captures: append(append([]string{}, captures...), tail)})
		}
	}
}

func splitSegments(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return []string{""}
	}
	return strings.Split(trimmed, "/")
}
