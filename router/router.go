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

// Package router assembles the trie, sequential fallback and sized cache
// into the composite Router (component D): a single routing engine for one
// virtual host, plus VirtualHost/Registry (component E) for hostname-based
// dispatch across several Routers.
package router

import (
	"sync"
	"sync/atomic"

	"github.com/rivaas-dev/corehttp/pathpattern"
	"github.com/rivaas-dev/corehttp/routing"
	"github.com/rivaas-dev/corehttp/routingerr"
	"github.com/rivaas-dev/corehttp/trie"
)

// snapshot is an immutable view of the registered route set: a compiled
// static table for Exact patterns, a trie for Parameterized patterns,
// and a sequential fallback for Prefix/Glob/Regex/PrefixAdding patterns.
// Router swaps this pointer atomically on every Register call
// (copy-on-write), the same pattern the teacher's router.go uses for its
// atomicRouteTree so reads never block on a writer.
type snapshot struct {
	static     *trie.StaticTable[*routing.Route]
	dynamic    *trie.Trie[*routing.Route]
	sequential *trie.SequentialRouter[*routing.Route]
	cacheable  bool
}

// Router is one routing engine: the composite of a compiled static table,
// a segment trie, and a linear-scan fallback, preserving the
// registration order of routes across all three (component D).
type Router struct {
	snap atomic.Pointer[snapshot]
	mu   sync.Mutex // guards routes/nextID/rebuild; readers never take this

	routes []*routing.Route
	nextID int

	cache *resultCache
}

// New creates an empty Router. cacheSize bounds the sized routing cache
// (component D's "Caffeine-style" cache); pass 0 to disable caching
// entirely.
func New(cacheSize int) *Router {
	r := &Router{cache: newResultCache(cacheSize)}
	r.snap.Store(buildSnapshot(nil))
	return r
}

func buildSnapshot(routes []*routing.Route) *snapshot {
	static := trie.NewStaticTable[*routing.Route](len(routes))
	dynamic := trie.New[*routing.Route]()
	sequential := trie.NewSequentialRouter[*routing.Route]()
	cacheable := true

	for _, rt := range routes {
		if len(rt.Headers) > 0 || len(rt.Params) > 0 {
			cacheable = false
		}
		switch rt.Pattern.Kind() {
		case pathpattern.KindExact:
			static.Add(rt.Pattern.Skeleton(), rt)
		default:
			if triePath, ok := rt.Pattern.TriePath(); ok {
				dynamic.Insert(triePath, rt)
			} else {
				sequential.Add(rt.Pattern.Match, rt)
			}
		}
	}

	return &snapshot{static: static, dynamic: dynamic, sequential: sequential, cacheable: cacheable}
}

// Find resolves ctx against the registered routes, honoring the sized
// cache when the route set is cacheable (no route anywhere carries a
// header/query predicate — see DESIGN.md for why predicate-bearing route
// sets disable caching entirely rather than per-route).
//
// A cache hit stores only the matched Route, never the per-request
// Result: spec §4.D requires that "on a cache hit, the stored route is
// re-applied to the context to recompute path params" rather than handing
// every caller sharing this cache key the very same Params map instance
// (see DESIGN.md).
func (r *Router) Find(ctx *routing.Context) (*routing.Result, *routingerr.Failure) {
	snap := r.snap.Load()
	key := ctx.CacheKey()

	if snap.cacheable {
		if route, ok := r.cache.get(key); ok {
			if res, _, ok := routing.Evaluate(route, ctx); ok {
				return res, nil
			}
		}
	}

	var failures []*routingerr.Failure

	// findInTier evaluates one sub-router's candidates and picks the best
	// among them, recording any deferred failures along the way. Spec
	// §4.D: "for composite routers, iterate sub-routers in order" — the
	// static (Exact) table is tried to exhaustion before the trie, and the
	// trie before the sequential fallback, so an Exact route always beats
	// a Parameterized one at the same path regardless of either route's
	// declared method/consumes/produces criteria.
	findInTier := func(routes []*routing.Route) *routing.Result {
		var results []*routing.Result
		for _, rt := range routes {
			res, fail, ok := routing.Evaluate(rt, ctx)
			switch {
			case ok:
				results = append(results, res)
				if res.Score == routing.ScoreHigh {
					return routing.Best(results)
				}
			case fail != nil:
				failures = append(failures, fail)
			}
		}
		return routing.Best(results)
	}

	commit := func(best *routing.Result) (*routing.Result, *routingerr.Failure) {
		if snap.cacheable {
			r.cache.add(key, best.Route)
		}
		return best, nil
	}

	if best := findInTier(snap.static.Lookup(ctx.Path)); best != nil {
		return commit(best)
	}

	var dynamicRoutes []*routing.Route
	for _, m := range snap.dynamic.Lookup(ctx.Path) {
		dynamicRoutes = append(dynamicRoutes, m.Values...)
	}
	if best := findInTier(dynamicRoutes); best != nil {
		return commit(best)
	}

	var sequentialRoutes []*routing.Route
	for _, m := range snap.sequential.Lookup(ctx.Path) {
		sequentialRoutes = append(sequentialRoutes, m.Value)
	}
	if best := findInTier(sequentialRoutes); best != nil {
		return commit(best)
	}

	if mostSpecific := routing.MostSpecificFailure(failures); mostSpecific != nil {
		return nil, mostSpecific
	}
	return nil, routingerr.ErrNoRouteMatched
}

// RouteCount reports how many routes are currently registered.
func (r *Router) RouteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}
