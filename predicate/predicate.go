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

// Package predicate implements the small boolean DSL used for header and
// query-parameter route predicates:
//
//	name            -- present (any value)
//	!name           -- absent
//	name=value      -- present with an exact value
//	name!=value     -- absent, or present with a different value
//	a=1 || a=2      -- disjunction: the predicate matches if any clause does
//
// A route may carry several predicates (headers and params, separately);
// each predicate string is evaluated independently and the results are
// AND'd by the caller (routing.Route). Evaluation never panics: a malformed
// lookup is treated as a soft miss, matching the "exceptions swallowed"
// behavior of the component this is grounded on.
package predicate

import "strings"

// Kind identifies one clause of a predicate.
type Kind uint8

const (
	KindPresent Kind = iota
	KindAbsent
	KindEquals
	KindNotEquals
)

type clause struct {
	kind  Kind
	name  string
	value string
}

// Predicate is a compiled, possibly disjunctive predicate expression.
type Predicate struct {
	raw     string
	clauses []clause
}

// Raw returns the original DSL string.
func (p *Predicate) Raw() string { return p.raw }

// Parse compiles a predicate expression. An empty string is invalid.
func Parse(raw string) (*Predicate, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errEmptyPredicate
	}
	parts := strings.Split(trimmed, "||")
	clauses := make([]clause, 0, len(parts))
	for _, part := range parts {
		c, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return &Predicate{raw: raw, clauses: clauses}, nil
}

func parseClause(part string) (clause, error) {
	if part == "" {
		return clause{}, errEmptyClause
	}
	// Parse has already split on every "||"; any '|' surviving in a clause
	// is necessarily a bare pipe, which the DSL disallows.
	if strings.Contains(part, "|") {
		return clause{}, errBarePipe
	}
	if strings.HasPrefix(part, "!") {
		name := strings.TrimPrefix(part, "!")
		if name == "" {
			return clause{}, errEmptyClause
		}
		return clause{kind: KindAbsent, name: name}, nil
	}
	if idx := strings.Index(part, "!="); idx >= 0 {
		name := strings.TrimSpace(part[:idx])
		value := strings.TrimSpace(part[idx+2:])
		if name == "" {
			return clause{}, errEmptyClause
		}
		return clause{kind: KindNotEquals, name: name, value: value}, nil
	}
	if idx := strings.IndexByte(part, '='); idx >= 0 {
		name := strings.TrimSpace(part[:idx])
		value := strings.TrimSpace(part[idx+1:])
		if name == "" {
			return clause{}, errEmptyClause
		}
		return clause{kind: KindEquals, name: name, value: value}, nil
	}
	return clause{kind: KindPresent, name: part}, nil
}

// Lookup retrieves all values for a header or query-parameter name.
// Implementations are net/http's http.Header and url.Values, both of which
// satisfy this shape via a thin adapter (see MapLookup).
type Lookup func(name string) ([]string, bool)

// MapLookup adapts a map[string][]string (http.Header, url.Values) to Lookup.
func MapLookup(m map[string][]string) Lookup {
	return func(name string) ([]string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// Evaluate reports whether the predicate matches, given a value lookup. Any
// panic inside a caller-supplied Lookup is recovered and treated as a
// non-match, matching the soft-fail behavior of the component this is
// grounded on.
func (p *Predicate) Evaluate(lookup Lookup) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	for _, c := range p.clauses {
		if evaluateClause(c, lookup) {
			return true
		}
	}
	return false
}

func evaluateClause(c clause, lookup Lookup) bool {
	values, present := lookup(c.name)
	switch c.kind {
	case KindPresent:
		return present
	case KindAbsent:
		return !present
	case KindEquals:
		if !present {
			return false
		}
		for _, v := range values {
			if v == c.value {
				return true
			}
		}
		return false
	case KindNotEquals:
		if !present {
			return true
		}
		for _, v := range values {
			if v == c.value {
				return false
			}
		}
		return true
	default:
		return false
	}
}
