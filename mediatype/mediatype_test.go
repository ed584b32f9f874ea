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

package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	mt, ok := Parse("application/json; charset=utf-8")
	require.True(t, ok)
	assert.Equal(t, "application", mt.Type)
	assert.Equal(t, "json", mt.Subtype)
	assert.Equal(t, "utf-8", mt.Params["charset"])

	_, ok = Parse("not-a-media-type")
	assert.False(t, ok)
}

func TestParseQuality(t *testing.T) {
	cases := []struct {
		in    string
		want  int
		valid bool
	}{
		{"1", 1000, true},
		{"1.0", 1000, true},
		{"1.000", 1000, true},
		{"0", 0, true},
		{"0.5", 500, true},
		{"0.857", 857, true},
		{"0.8", 800, true},
		{"1.1", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := parseQuality(c.in)
		assert.Equal(t, c.valid, ok, c.in)
		if c.valid {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestParseAccept(t *testing.T) {
	specs := ParseAccept("text/html, application/json;q=0.8, */*;q=0.1")
	require.Len(t, specs, 3)
	assert.Equal(t, 1000, specs[0].Q)
	assert.Equal(t, 800, specs[1].Q)
	assert.Equal(t, 100, specs[2].Q)
	assert.True(t, specs[2].MediaType.IsWildcardType())
}

func TestNegotiateExactBeatsWildcard(t *testing.T) {
	produced := []MediaType{
		{Type: "application", Subtype: "json"},
		{Type: "text", Subtype: "plain"},
	}
	accept := ParseAccept("application/json, */*;q=0.9")
	mt, ok := Negotiate(produced, accept)
	require.True(t, ok)
	assert.Equal(t, "json", mt.Subtype)
}

func TestNegotiateQValueWins(t *testing.T) {
	produced := []MediaType{
		{Type: "application", Subtype: "xml"},
		{Type: "application", Subtype: "json"},
	}
	accept := ParseAccept("application/xml;q=0.5, application/json;q=0.9")
	mt, ok := Negotiate(produced, accept)
	require.True(t, ok)
	assert.Equal(t, "json", mt.Subtype)
}

func TestNegotiateNoMatch(t *testing.T) {
	produced := []MediaType{{Type: "application", Subtype: "json"}}
	accept := ParseAccept("text/html")
	_, ok := Negotiate(produced, accept)
	assert.False(t, ok)
}

func TestNegotiateEmptyAcceptPicksFirst(t *testing.T) {
	produced := []MediaType{
		{Type: "application", Subtype: "json"},
		{Type: "text", Subtype: "plain"},
	}
	mt, ok := Negotiate(produced, nil)
	require.True(t, ok)
	assert.Equal(t, "json", mt.Subtype)
}
