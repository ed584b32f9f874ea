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

// Package routing holds the framework's routing data model: Route,
// RoutingContext (the per-request cache key), RoutingResult and the Score
// used to tie-break multiple matching routes.
package routing

import (
	"net/http"

	"github.com/rivaas-dev/corehttp/mediatype"
	"github.com/rivaas-dev/corehttp/pathpattern"
	"github.com/rivaas-dev/corehttp/predicate"
)

// Score ranks how specifically a single match satisfied a route's declared
// criteria, used to pick a winner when several registered routes match the
// same request (spec §4.D tie-break). Unlike a route's path pattern kind,
// Score is not a fixed property of the Route — it depends on which of
// method/consumes/produces actually participated in this particular match
// (spec §4.B step 6), so it is computed fresh by Evaluate on every call.
type Score uint8

const (
	// ScoreLowest: the match relied on the path alone — no method
	// restriction, no consumes/produces participation.
	ScoreLowest Score = iota
	// ScoreLow: only the method restriction participated.
	ScoreLow
	// ScoreMedium: exactly one of consumes/produces participated.
	ScoreMedium
	// ScoreHigh: both consumes and produces participated; a HIGH match
	// short-circuits evaluation of any remaining candidate routes.
	ScoreHigh
)

func (s Score) String() string {
	switch s {
	case ScoreHigh:
		return "HIGH"
	case ScoreMedium:
		return "MEDIUM"
	case ScoreLow:
		return "LOW"
	default:
		return "LOWEST"
	}
}

// Route is one registered routing rule: a path pattern plus the optional
// method/media-type/header/query-predicate refinements that narrow it.
type Route struct {
	ID       int // registration order, used as the final tie-break
	Pattern  *pathpattern.Pattern
	Methods  []string // empty: any method
	Consumes []mediatype.MediaType
	Produces []mediatype.MediaType
	Headers  []*predicate.Predicate
	Params   []*predicate.Predicate
	Excludes []*pathpattern.Pattern
	Handler  http.Handler
}

// Option configures a Route at construction time.
type Option func(*Route)

// WithMethods restricts the route to the given HTTP methods.
func WithMethods(methods ...string) Option {
	return func(r *Route) { r.Methods = methods }
}

// WithConsumes restricts the route to requests whose Content-Type matches
// one of mts.
func WithConsumes(mts ...mediatype.MediaType) Option {
	return func(r *Route) { r.Consumes = mts }
}

// WithProduces declares the media types this route can produce, used to
// negotiate against the request's Accept header.
func WithProduces(mts ...mediatype.MediaType) Option {
	return func(r *Route) { r.Produces = mts }
}

// WithHeaderPredicate adds a header predicate (spec's predicate DSL); all
// header predicates on a route must match (AND).
func WithHeaderPredicate(p *predicate.Predicate) Option {
	return func(r *Route) { r.Headers = append(r.Headers, p) }
}

// WithParamPredicate adds a query-parameter predicate; all param predicates
// on a route must match (AND).
func WithParamPredicate(p *predicate.Predicate) Option {
	return func(r *Route) { r.Params = append(r.Params, p) }
}

// WithExclude marks a sub-pattern that must NOT match the request path for
// this route to apply, letting a broad prefix/glob route carve out a more
// specific exception handled elsewhere.
func WithExclude(p *pathpattern.Pattern) Option {
	return func(r *Route) { r.Excludes = append(r.Excludes, p) }
}

// NewRoute builds a Route for pattern, applying opts in order. id should be
// the route's registration index, used as the final tie-break between
// equally scored matches.
func NewRoute(id int, pattern *pathpattern.Pattern, handler http.Handler, opts ...Option) *Route {
	r := &Route{ID: id, Pattern: pattern, Handler: handler}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acceptsMethod reports whether method is allowed by the route (no
// restriction means every method is allowed).
func (r *Route) acceptsMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// excluded reports whether path matches one of the route's exclusion
// patterns.
func (r *Route) excluded(path string) bool {
	for _, ex := range r.Excludes {
		if _, ok := ex.Match(path); ok {
			return true
		}
	}
	return false
}
