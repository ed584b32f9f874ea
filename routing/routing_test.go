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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/corehttp/mediatype"
	"github.com/rivaas-dev/corehttp/pathpattern"
	"github.com/rivaas-dev/corehttp/predicate"
	"github.com/rivaas-dev/corehttp/routingerr"
)

func noopHandler(http.ResponseWriter, *http.Request) {}

func mustPattern(t *testing.T, raw string) *pathpattern.Pattern {
	t.Helper()
	p, err := pathpattern.Parse(raw)
	require.NoError(t, err)
	return p
}

func TestEvaluatePathMismatch(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users/:id"), http.HandlerFunc(noopHandler))
	ctx := NewContext("", http.MethodGet, "/orders/1", "", "", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	assert.Nil(t, res)
	assert.Nil(t, failure)
	assert.False(t, ok)
}

func TestEvaluateMethodDeferred405(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users/:id"), http.HandlerFunc(noopHandler), WithMethods(http.MethodGet))
	ctx := NewContext("", http.MethodPost, "/users/1", "", "", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	assert.Nil(t, res)
	assert.False(t, ok)
	require.NotNil(t, failure)
	assert.Equal(t, 405, failure.Status)
}

func TestEvaluateConsumesDeferred415(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users"), http.HandlerFunc(noopHandler),
		WithConsumes(mediatype.MediaType{Type: "application", Subtype: "json"}))
	ctx := NewContext("", http.MethodPost, "/users", "text/plain", "", nil, nil)
	_, failure, ok := Evaluate(route, ctx)
	assert.False(t, ok)
	require.NotNil(t, failure)
	assert.Equal(t, 415, failure.Status)
}

func TestEvaluateProducesDeferred406(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users"), http.HandlerFunc(noopHandler),
		WithProduces(mediatype.MediaType{Type: "application", Subtype: "json"}))
	ctx := NewContext("", http.MethodGet, "/users", "", "text/plain", nil, nil)
	_, failure, ok := Evaluate(route, ctx)
	assert.False(t, ok)
	require.NotNil(t, failure)
	assert.Equal(t, 406, failure.Status)
}

func TestEvaluatePredicateSoftMiss(t *testing.T) {
	pred, err := predicate.Parse("X-Beta")
	require.NoError(t, err)
	route := NewRoute(0, mustPattern(t, "/users"), http.HandlerFunc(noopHandler), WithHeaderPredicate(pred))
	ctx := NewContext("", http.MethodGet, "/users", "", "", predicate.MapLookup(nil), nil)
	res, failure, ok := Evaluate(route, ctx)
	assert.Nil(t, res)
	assert.Nil(t, failure, "predicate miss must not defer a status")
	assert.False(t, ok)
}

func TestEvaluateFullMatch(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users/:id"), http.HandlerFunc(noopHandler), WithMethods(http.MethodGet))
	ctx := NewContext("", http.MethodGet, "/users/42", "", "", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	require.True(t, ok)
	assert.Nil(t, failure)
	assert.Equal(t, "42", res.Params["id"])
	assert.Equal(t, ScoreLow, res.Score, "only the method restriction participated")
}

func TestEvaluateScorePathOnlyIsLowest(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/users"), http.HandlerFunc(noopHandler))
	ctx := NewContext("", http.MethodGet, "/users", "", "", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	require.True(t, ok)
	assert.Nil(t, failure)
	assert.Equal(t, ScoreLowest, res.Score)
}

func TestEvaluateScoreBothConsumesAndProducesIsHigh(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/upload"), http.HandlerFunc(noopHandler),
		WithMethods(http.MethodPost),
		WithConsumes(
			mediatype.MediaType{Type: "application", Subtype: "json"},
			mediatype.MediaType{Type: "application", Subtype: "xml"},
		),
		WithProduces(mediatype.MediaType{Type: "application", Subtype: "json"}))
	ctx := NewContext("", http.MethodPost, "/upload", "application/json", "application/json", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	require.True(t, ok)
	assert.Nil(t, failure)
	assert.Equal(t, ScoreHigh, res.Score, "more than one consumes candidate plus produces both participated")
}

// TestEvaluateScoreScenario3ProducesOnlyIsMedium exercises spec.md's §8
// Scenario 3: a route declaring a single consumes type (application/json)
// and a produces set negotiated against Accept. A single declared consumes
// type is a plain Content-Type equality gate — it discriminates nothing
// beyond what the content-type check already does — so only produces'
// genuine weighted negotiation participates, and the match scores MEDIUM.
func TestEvaluateScoreScenario3ProducesOnlyIsMedium(t *testing.T) {
	route := NewRoute(0, mustPattern(t, "/upload"), http.HandlerFunc(noopHandler),
		WithMethods(http.MethodPost),
		WithConsumes(mediatype.MediaType{Type: "application", Subtype: "json"}),
		WithProduces(
			mediatype.MediaType{Type: "application", Subtype: "json"},
			mediatype.MediaType{Type: "text", Subtype: "plain"},
		))
	ctx := NewContext("", http.MethodPost, "/upload", "application/json", "text/plain", nil, nil)
	res, failure, ok := Evaluate(route, ctx)
	require.True(t, ok)
	assert.Nil(t, failure)
	assert.Equal(t, ScoreMedium, res.Score)
}

func TestBestPrefersHigherScore(t *testing.T) {
	exact := &Result{Route: &Route{ID: 1}, Score: ScoreHigh}
	param := &Result{Route: &Route{ID: 0}, Score: ScoreMedium}
	assert.Same(t, exact, Best([]*Result{param, exact}))
}

func TestBestTieBreaksByRegistrationOrder(t *testing.T) {
	first := &Result{Route: &Route{ID: 0}, Score: ScoreMedium}
	second := &Result{Route: &Route{ID: 1}, Score: ScoreMedium}
	assert.Same(t, first, Best([]*Result{second, first}))
}

func TestMostSpecificFailurePrecedence(t *testing.T) {
	failures := []*routingerr.Failure{
		routingerr.ErrNotAcceptable,
		routingerr.ErrMethodNotAllowed,
		routingerr.ErrUnsupportedMedia,
	}
	best := MostSpecificFailure(failures)
	assert.Equal(t, 405, best.Status)
}
