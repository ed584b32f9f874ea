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

// Package pathpattern parses and matches the path-pattern DSL accepted by
// route builders: exact, prefix, parameterized (":name"/"{name}"), glob
// ("*"/"**") and anchored regex patterns, plus a prefix composed with a
// glob or regex ("PrefixAdding").
//
// Every pattern exposes a skeleton (parameters collapsed to ":"), a
// triePath (the skeleton, when the pattern is trie-indexable), its ordered
// parameter names, and a complexity score used for tie-breaking equally
// scored route matches.
package pathpattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies which PathPattern variant a Pattern holds.
type Kind uint8

const (
	KindExact Kind = iota
	KindPrefix
	KindParameterized
	KindGlob
	KindRegex
	KindPrefixAdding
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPrefix:
		return "prefix"
	case KindParameterized:
		return "parameterized"
	case KindGlob:
		return "glob"
	case KindRegex:
		return "regex"
	case KindPrefixAdding:
		return "prefix+inner"
	default:
		return "unknown"
	}
}

// SegmentKind distinguishes literal text from a captured parameter within a
// Parameterized pattern.
type SegmentKind uint8

const (
	SegLiteral SegmentKind = iota
	SegParam
)

// Segment is one "/"-delimited piece of a Parameterized pattern.
type Segment struct {
	Kind  SegmentKind
	Value string // literal text, or the parameter name (without ':' / '{}')
}

// Pattern is a compiled path pattern. Use Parse to build one from the DSL,
// or NewPrefixAdding to compose a static prefix with a Glob/Regex inner
// pattern the way a route builder does when it prepends a virtual-host or
// group prefix to a user-declared pattern.
type Pattern struct {
	kind     Kind
	raw      string
	literal  string    // Exact, Prefix
	segments []Segment // Parameterized
	glob     string    // Glob, without scheme
	regex    *regexp.Regexp
	prefix   string // Prefix, PrefixAdding
	inner    *Pattern

	paramNames []string // ordered, duplicates mean back-reference
	skeleton   string
	triePath   string
	hasTrie    bool
	complexity int
}

// paramSegmentRegex validates the "(/[^/{}:]+|/:[^/{}]+|/\{[^/{}]+\})+/?"
// grammar for parameterized patterns (spec §6).
var paramSegmentRegex = regexp.MustCompile(`^(/[^/{}:]+|/:[^/{}]+|/\{[^/{}]+\})+/?$`)

// Parse parses one path pattern in the DSL described by spec §6:
//
//	exact:/foo          -- literal match
//	prefix:/foo/         -- prefix match (trailing "/*" is also accepted)
//	glob:/**/foo          -- "*" = one segment, "**" = remainder
//	regex:^/foo/(?P<id>[0-9]+)$ -- anchored regex with named groups
//	/users/:id or /users/{id}   -- parameterized, scheme defaults to exact-with-params
//
// A pattern with no recognized scheme must start with "/"; anything else is
// a parse error.
func Parse(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, fmt.Errorf("pathpattern: empty pattern")
	}

	switch {
	case strings.HasPrefix(raw, "exact:"):
		return parseExact(raw, strings.TrimPrefix(raw, "exact:"))
	case strings.HasPrefix(raw, "prefix:"):
		return parsePrefix(raw, strings.TrimPrefix(raw, "prefix:"))
	case strings.HasPrefix(raw, "glob:"):
		return parseGlob(raw, strings.TrimPrefix(raw, "glob:"))
	case strings.HasPrefix(raw, "regex:"):
		return parseRegex(raw, strings.TrimPrefix(raw, "regex:"))
	case strings.HasPrefix(raw, "/"):
		return parseDefault(raw)
	default:
		return nil, fmt.Errorf("pathpattern: pattern %q must start with '/' or a scheme (exact:/prefix:/glob:/regex:)", raw)
	}
}

// parseDefault handles a scheme-less pattern: exact if it contains no
// parameter markers, parameterized otherwise.
func parseDefault(raw string) (*Pattern, error) {
	if strings.ContainsAny(raw, ":{") {
		return parseParameterized(raw, raw)
	}
	return parseExact(raw, raw)
}

func parseExact(raw, literal string) (*Pattern, error) {
	if !strings.HasPrefix(literal, "/") {
		return nil, fmt.Errorf("pathpattern: exact pattern %q must start with '/'", raw)
	}
	return &Pattern{
		kind:       KindExact,
		raw:        raw,
		literal:    literal,
		skeleton:   literal,
		triePath:   literal,
		hasTrie:    true,
		complexity: 1_000_000 + len(literal),
	}, nil
}

func parsePrefix(raw, prefix string) (*Pattern, error) {
	prefix = strings.TrimSuffix(prefix, "/*")
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("pathpattern: prefix pattern %q must start with '/'", raw)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = "/"
	}
	return &Pattern{
		kind:       KindPrefix,
		raw:        raw,
		prefix:     prefix,
		skeleton:   prefix,
		complexity: 100 + len(prefix),
	}, nil
}

func parseParameterized(raw, pattern string) (*Pattern, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pathpattern: parameterized pattern %q must start with '/'", raw)
	}
	if !paramSegmentRegex.MatchString(pattern) {
		return nil, fmt.Errorf("pathpattern: pattern %q does not match the required segment grammar", raw)
	}

	trimmed := strings.TrimSuffix(pattern, "/")
	parts := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")

	segments := make([]Segment, 0, len(parts))
	var paramNames []string
	var skeleton strings.Builder
	var triePath strings.Builder
	complexity := 0

	for _, part := range parts {
		skeleton.WriteByte('/')
		triePath.WriteByte('/')
		switch {
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			segments = append(segments, Segment{Kind: SegParam, Value: name})
			paramNames = append(paramNames, name)
			skeleton.WriteByte(':')
			triePath.WriteByte(':')
			complexity += 10
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			segments = append(segments, Segment{Kind: SegParam, Value: name})
			paramNames = append(paramNames, name)
			skeleton.WriteByte(':')
			triePath.WriteByte(':')
			complexity += 10
		default:
			segments = append(segments, Segment{Kind: SegLiteral, Value: part})
			skeleton.WriteString(part)
			triePath.WriteString(part)
			complexity += 1000
		}
	}

	return &Pattern{
		kind:       KindParameterized,
		raw:        raw,
		segments:   segments,
		paramNames: paramNames,
		skeleton:   skeleton.String(),
		triePath:   triePath.String(),
		hasTrie:    true,
		complexity: complexity,
	}, nil
}

func parseGlob(raw, glob string) (*Pattern, error) {
	if !strings.HasPrefix(glob, "/") {
		return nil, fmt.Errorf("pathpattern: glob pattern %q must start with '/'", raw)
	}
	return &Pattern{
		kind:       KindGlob,
		raw:        raw,
		glob:       glob,
		complexity: 300 + strings.Count(glob, "/")*5,
	}, nil
}

func parseRegex(raw, pattern string) (*Pattern, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("pathpattern: invalid regex %q: %w", raw, err)
	}
	return &Pattern{
		kind:       KindRegex,
		raw:        raw,
		regex:      re,
		paramNames: re.SubexpNames()[1:],
		complexity: 500,
	}, nil
}

// NewPrefixAdding composes a static prefix with an inner Glob or Regex
// pattern, the way a group/virtual-host builder prepends its own prefix to
// a user-declared dynamic pattern. The inner pattern must be Glob or Regex;
// Exact/Prefix/Parameterized patterns should instead have the prefix folded
// directly into their literal/segments.
func NewPrefixAdding(prefix string, inner *Pattern) (*Pattern, error) {
	if inner == nil {
		return nil, fmt.Errorf("pathpattern: PrefixAdding requires a non-nil inner pattern")
	}
	if inner.kind != KindGlob && inner.kind != KindRegex {
		return nil, fmt.Errorf("pathpattern: PrefixAdding inner pattern must be glob or regex, got %s", inner.kind)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return &Pattern{
		kind:       KindPrefixAdding,
		raw:        prefix + "+" + inner.raw,
		prefix:     prefix,
		inner:      inner,
		paramNames: inner.paramNames,
		complexity: 200 + len(prefix) + inner.complexity/100,
	}, nil
}

// Kind returns which PathPattern variant this is.
func (p *Pattern) Kind() Kind { return p.kind }

// Raw returns the original DSL string this pattern was parsed from.
func (p *Pattern) Raw() string { return p.raw }

// Skeleton returns the parameter-collapsed form of the pattern (params
// replaced with ":"), used for duplicate-route detection. Empty for
// patterns with no fixed skeleton (Glob, Regex, PrefixAdding).
func (p *Pattern) Skeleton() string { return p.skeleton }

// TriePath returns the skeleton and true if this pattern can be indexed by
// the routing trie (component A); Prefix, Glob, Regex and PrefixAdding
// report false and fall back to the sequential router.
func (p *Pattern) TriePath() (string, bool) { return p.triePath, p.hasTrie }

// ParamNames returns the ordered, possibly-duplicated list of parameter
// names declared by the pattern. A name that appears twice denotes a
// back-reference: the second capture must equal the first.
func (p *Pattern) ParamNames() []string { return p.paramNames }

// Complexity is a tie-break score: higher means more specific.
func (p *Pattern) Complexity() int { return p.complexity }

// Match attempts to match path against the pattern. On success it returns
// the captured parameters (nil if none) and true.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	switch p.kind {
	case KindExact:
		return nil, path == p.literal
	case KindPrefix:
		return matchPrefix(p.prefix, path)
	case KindParameterized:
		return matchParameterized(p.segments, path)
	case KindGlob:
		return matchGlob(p.glob, path)
	case KindRegex:
		return matchRegex(p.regex, path)
	case KindPrefixAdding:
		rest, ok := matchPrefix(p.prefix, path)
		if !ok {
			return nil, false
		}
		remainder := strings.TrimPrefix(path, p.prefix)
		if remainder == "" {
			remainder = "/"
		}
		params, ok := p.inner.Match(remainder)
		if !ok {
			return nil, false
		}
		if rest != nil {
			for k, v := range rest {
				if params == nil {
					params = map[string]string{}
				}
				params[k] = v
			}
		}
		return params, true
	default:
		return nil, false
	}
}

func matchPrefix(prefix, path string) (map[string]string, bool) {
	if prefix == "/" {
		return nil, strings.HasPrefix(path, "/")
	}
	return nil, path == prefix || strings.HasPrefix(path, prefix+"/")
}

// matchParameterized walks segments against "/"-delimited path segments,
// capturing parameter values and enforcing back-references (a parameter
// name seen twice must capture the same value both times).
func matchParameterized(segments []Segment, path string) (map[string]string, bool) {
	trimmed := strings.TrimSuffix(path, "/")
	pathParts := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")
	if trimmed == "" {
		pathParts = []string{""}
	}
	if len(pathParts) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range segments {
		value := pathParts[i]
		if value == "" {
			return nil, false
		}
		switch seg.Kind {
		case SegLiteral:
			if value != seg.Value {
				return nil, false
			}
		case SegParam:
			if params == nil {
				params = make(map[string]string, len(segments))
			}
			if existing, seen := params[seg.Value]; seen {
				if existing != value {
					return nil, false // back-reference mismatch
				}
				continue
			}
			params[seg.Value] = value
		}
	}
	return params, true
}

// globToRegex compiles a "*"/"**" glob into an anchored regex. "*" matches
// exactly one path segment; "**" matches zero or more segments including
// slashes.
func globToRegex(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	i := 0
	for i < len(glob) {
		switch {
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(`.*`)
			i += 2
		case glob[i] == '*':
			b.WriteString(`[^/]+`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(glob[i])))
			i++
		}
	}
	b.WriteByte('$')
	return regexp.MustCompile(b.String())
}

func matchGlob(glob, path string) (map[string]string, bool) {
	re := globToRegex(glob)
	return nil, re.MatchString(path)
}

func matchRegex(re *regexp.Regexp, path string) (map[string]string, bool) {
	m := re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	names := re.SubexpNames()
	var params map[string]string
	for i, name := range names {
		if i == 0 || name == "" {
			continue
		}
		if params == nil {
			params = make(map[string]string, len(names))
		}
		params[name] = m[i]
	}
	return params, true
}
