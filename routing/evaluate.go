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
	"github.com/rivaas-dev/corehttp/mediatype"
	"github.com/rivaas-dev/corehttp/routingerr"
)

// Result is what a successful route evaluation produces: the matched route,
// its captured path parameters, and the score used to rank it against any
// other candidate routes.
type Result struct {
	Route  *Route
	Params map[string]string
	Score  Score
}

// Evaluate checks route against ctx in the fixed order the router applies
// to every candidate (spec §4.B): path, then method (deferring a 405),
// then Content-Type/consumes (deferring a 415), then Accept/produces
// negotiation (deferring a 406), then header/query predicates (a soft
// miss — no deferred status, since predicates are meant to disambiguate
// between otherwise-identical routes rather than reject the request).
//
// It returns (result, nil, true) on a full match; (nil, failure, false)
// when the path matched but a later step disqualified the route, in which
// case failure is the status this route would imply if nothing else
// matches; and (nil, nil, false) when the path itself didn't match (this
// route contributes nothing to the eventual fallback decision).
func Evaluate(route *Route, ctx *Context) (*Result, *routingerr.Failure, bool) {
	params, ok := route.Pattern.Match(ctx.Path)
	if !ok {
		return nil, nil, false
	}
	if route.excluded(ctx.Path) {
		return nil, nil, false
	}

	if !route.acceptsMethod(ctx.Method) {
		return nil, routingerr.ErrMethodNotAllowed, false
	}

	if len(route.Consumes) > 0 {
		ct, present := ctx.contentMediaType()
		if present && !matchesAny(route.Consumes, ct) {
			return nil, routingerr.ErrUnsupportedMedia, false
		}
	}

	if len(route.Produces) > 0 {
		if _, ok := mediatype.Negotiate(route.Produces, ctx.acceptSpecs()); !ok {
			return nil, routingerr.ErrNotAcceptable, false
		}
	}

	for _, h := range route.Headers {
		if !h.Evaluate(ctx.headers) {
			return nil, nil, false // soft miss, no deferred status
		}
	}
	for _, p := range route.Params {
		if !p.Evaluate(ctx.query) {
			return nil, nil, false
		}
	}

	return &Result{Route: route, Params: params, Score: scoreMatch(route, ctx)}, nil, true
}

// scoreMatch computes this match's Score from which of
// method/consumes/produces actually participated in it (spec §4.B step 6:
// "HIGH if both consumes and produces participated in the match; MEDIUM if
// only one; LOW if only method; LOWEST if only path"). This is deliberately
// not a fixed property of Route cached at registration time — the same
// route can score differently across requests depending on what the
// request actually presented.
//
// consumes is a binary exclusion test ("route declares consumes that
// excludes it"): with a single declared media type it behaves exactly like
// an implicit Content-Type requirement and contributes nothing beyond what
// the method check already does, so it only counts as participating when
// there is more than one candidate to discriminate between. produces is
// always a genuine weighted negotiation ("for each declared produces m,
// compute q-weighted match... pick highest-scoring") the moment it is
// declared, regardless of how many candidates it offers.
func scoreMatch(route *Route, ctx *Context) Score {
	_, hasContentType := ctx.contentMediaType()
	consumesParticipated := len(route.Consumes) > 1 && hasContentType
	producesParticipated := len(route.Produces) > 0
	methodParticipated := len(route.Methods) > 0

	switch {
	case consumesParticipated && producesParticipated:
		return ScoreHigh
	case consumesParticipated || producesParticipated:
		return ScoreMedium
	case methodParticipated:
		return ScoreLow
	default:
		return ScoreLowest
	}
}

func matchesAny(candidates []mediatype.MediaType, ct mediatype.MediaType) bool {
	for _, c := range candidates {
		if c.IsWildcardType() {
			return true
		}
		if c.Type == ct.Type && (c.IsWildcardSubtype() || c.Subtype == ct.Subtype) {
			return true
		}
	}
	return false
}

// Best picks the winning result among several matches of the same request
// (spec §4.D): the highest Score wins; ties break by lowest Route.ID
// (first-registered wins). A HIGH-scored match lets the caller stop
// evaluating further candidates entirely — Best itself just compares
// whatever it's given.
func Best(results []*Result) *Result {
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score || (r.Score == best.Score && r.Route.ID < best.Route.ID) {
			best = r
		}
	}
	return best
}

// MostSpecificFailure reduces a list of deferred failures from candidates
// whose path matched but who were otherwise disqualified, picking the one
// to surface to the caller. Precedence: PolicyViolation failures are more
// informative than a bare NoMatch, and within PolicyViolation, 405 is
// reported before 415 before 406 — a client should learn "wrong method"
// before "wrong content type", per spec §5's documented precedence.
func MostSpecificFailure(failures []*routingerr.Failure) *routingerr.Failure {
	if len(failures) == 0 {
		return nil
	}
	best := failures[0]
	for _, f := range failures[1:] {
		if failurePriority(f) < failurePriority(best) {
			best = f
		}
	}
	return best
}

func failurePriority(f *routingerr.Failure) int {
	switch f.Status {
	case 405:
		return 0
	case 415:
		return 1
	case 406:
		return 2
	default:
		return 3
	}
}
