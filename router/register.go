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

package router

import (
	"net/http"

	"github.com/rivaas-dev/corehttp/pathpattern"
	"github.com/rivaas-dev/corehttp/routing"
)

// Register adds a route for pattern and returns it. Registration order is
// preserved for tie-breaking (routing.Best) regardless of which internal
// sub-router (static table/trie/sequential) ends up holding the pattern.
// Registering a route rebuilds the router's snapshot under mu and swaps it
// in atomically, so concurrent Find calls never observe a half-built
// snapshot (the copy-on-write idiom router.go's updateTrees uses, here
// via atomic.Pointer instead of unsafe.Pointer+CompareAndSwapPointer since
// this module targets Go 1.24's generic atomics).
func (r *Router) Register(pattern *pathpattern.Pattern, handler http.Handler, opts ...routing.Option) *routing.Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	rt := routing.NewRoute(id, pattern, handler, opts...)
	r.routes = append(r.routes, rt)
	r.snap.Store(buildSnapshot(r.routes))
	r.cache.purge()
	return rt
}

// AllowedMethods returns the set of methods any registered route would
// accept for path, used to build the Allow header on a 405 response. A
// route with no method restriction is reported as "*".
func (r *Router) AllowedMethods(path string) []string {
	r.mu.Lock()
	routes := append([]*routing.Route(nil), r.routes...)
	r.mu.Unlock()

	seen := make(map[string]struct{})
	var methods []string
	for _, rt := range routes {
		if _, ok := rt.Pattern.Match(path); !ok {
			continue
		}
		if len(rt.Methods) == 0 {
			return []string{"*"}
		}
		for _, m := range rt.Methods {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			methods = append(methods, m)
		}
	}
	return methods
}
