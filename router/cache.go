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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rivaas-dev/corehttp/routing"
)

// resultCache is the sized routing cache (component D): a bounded LRU
// keyed by routing.Context.CacheKey(). It stores the matched Route, not
// the per-request Result — spec §4.D: "Value: the resolved service config
// (not the RoutingResult, which depends on per-request path params). On a
// cache hit, the stored route is re-applied to the context to recompute
// path params." Caching the Result itself would hand every caller sharing
// a cache key the same Params map instance, an aliasing hazard under
// concurrent access (see DESIGN.md). A size of 0 disables caching
// entirely (get/add become no-ops), matching a router configured without
// the "sized cache" option.
type resultCache struct {
	lru *lru.Cache[string, *routing.Route]
}

func newResultCache(size int) *resultCache {
	if size <= 0 {
		return &resultCache{}
	}
	c, err := lru.New[string, *routing.Route](size)
	if err != nil {
		// Only returns an error for size <= 0, already excluded above.
		return &resultCache{}
	}
	return &resultCache{lru: c}
}

func (c *resultCache) get(key string) (*routing.Route, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *resultCache) add(key string, route *routing.Route) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, route)
}

// purge drops every cached entry; called whenever the route set changes
// since a cache key's best match can change out from under an otherwise
// unrelated request once a higher-scored route is registered later.
func (c *resultCache) purge() {
	if c.lru == nil {
		return
	}
	c.lru.Purge()
}
