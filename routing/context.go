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

package routing

import (
	"sort"
	"strings"

	"github.com/rivaas-dev/corehttp/mediatype"
	"github.com/rivaas-dev/corehttp/predicate"
)

// Context is the immutable, value-equal description of one request as seen
// by the router: it doubles as the routing cache key (component D), so two
// requests with equal Context fields always resolve to the same route.
type Context struct {
	VirtualHost string
	Method      string
	Path        string
	ContentType string // raw Content-Type header, "" if absent
	Accept      string // raw Accept header, "" if absent

	headers predicate.Lookup
	query   predicate.Lookup
}

// NewContext builds a Context. headers and query back the predicate
// evaluation for this request; they are not part of the cache key (only the
// value fields above are), matching the spec's definition of RoutingContext
// equality/hash.
func NewContext(virtualHost, method, path, contentType, accept string, headers, query predicate.Lookup) *Context {
	return &Context{
		VirtualHost: virtualHost,
		Method:      method,
		Path:        path,
		ContentType: contentType,
		Accept:      accept,
		headers:     headers,
		query:       query,
	}
}

// CacheKey returns a string suitable as a sized-cache key (component D):
// the value fields only, with the Accept header's media ranges
// canonicalized by sort order so that equivalent but differently-ordered
// Accept headers share a cache entry.
func (c *Context) CacheKey() string {
	var b strings.Builder
	b.WriteString(c.VirtualHost)
	b.WriteByte('\x00')
	b.WriteString(c.Method)
	b.WriteByte('\x00')
	b.WriteString(c.Path)
	b.WriteByte('\x00')
	b.WriteString(c.ContentType)
	b.WriteByte('\x00')
	b.WriteString(canonicalAccept(c.Accept))
	return b.String()
}

func canonicalAccept(accept string) string {
	if accept == "" {
		return ""
	}
	parts := strings.Split(accept, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// contentMediaType parses Context.ContentType, ignoring a missing or
// unparsable header (treated as "no constraint" by consumes matching).
func (c *Context) contentMediaType() (mediatype.MediaType, bool) {
	if c.ContentType == "" {
		return mediatype.MediaType{}, false
	}
	return mediatype.Parse(c.ContentType)
}

// acceptSpecs parses Context.Accept into ranked AcceptSpecs.
func (c *Context) acceptSpecs() []mediatype.AcceptSpec {
	return mediatype.ParseAccept(c.Accept)
}
