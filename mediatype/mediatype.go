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

// Package mediatype parses media types and negotiates an Accept header
// against a set of producible media types using q-values and specificity.
//
// Parsing is hand-written with strings.IndexByte/strings.Split scanning
// rather than regular expressions.
package mediatype

import (
	"strconv"
	"strings"
)

// MediaType is a parsed "type/subtype" pair with optional parameters.
type MediaType struct {
	Type    string
	Subtype string
	Params  map[string]string
}

// String renders the media type back to wire form.
func (m MediaType) String() string {
	if len(m.Params) == 0 {
		return m.Type + "/" + m.Subtype
	}
	var b strings.Builder
	b.WriteString(m.Type)
	b.WriteByte('/')
	b.WriteString(m.Subtype)
	for k, v := range m.Params {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

// IsWildcardType reports whether Type is "*".
func (m MediaType) IsWildcardType() bool { return m.Type == "*" }

// IsWildcardSubtype reports whether Subtype is "*".
func (m MediaType) IsWildcardSubtype() bool { return m.Subtype == "*" }

// Parse parses a single "type/subtype;param=value;..." media type. It does
// not accept a comma-separated list or q-values; use ParseAccept for that.
func Parse(raw string) (MediaType, bool) {
	raw = trimWhitespace(raw)
	if raw == "" {
		return MediaType{}, false
	}
	return parseOne(raw)
}

func parseOne(raw string) (MediaType, bool) {
	slash := strings.IndexByte(raw, '/')
	if slash < 0 {
		return MediaType{}, false
	}
	typ := raw[:slash]
	rest := raw[slash+1:]

	var subtype string
	var params map[string]string

	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		subtype = rest
	} else {
		subtype = rest[:semi]
		params = parseParams(rest[semi+1:])
	}

	typ = trimWhitespace(typ)
	subtype = trimWhitespace(subtype)
	if typ == "" || subtype == "" {
		return MediaType{}, false
	}
	return MediaType{Type: typ, Subtype: subtype, Params: params}, true
}

func parseParams(s string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = trimWhitespace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		key := trimWhitespace(part[:eq])
		val := trimWhitespace(part[eq+1:])
		val = strings.Trim(val, `"`)
		if key == "" {
			continue
		}
		params[strings.ToLower(key)] = val
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

func trimWhitespace(s string) string {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// AcceptSpec is one entry of a parsed Accept header: a media-type range with
// its q-value (in thousandths, 0-1000) and declaration order.
type AcceptSpec struct {
	MediaType MediaType
	Q         int // 0-1000; ParseAccept drops entries with an invalid q-value
	Order     int
}

// ParseAccept parses a full "Accept: type/sub;q=0.8, other/sub" header into
// its ranges, in declaration order. Entries with an unparsable q-value (q
// outside [0,1] or malformed) are dropped.
func ParseAccept(header string) []AcceptSpec {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	specs := make([]AcceptSpec, 0, len(parts))
	for i, part := range parts {
		part = trimWhitespace(part)
		if part == "" {
			continue
		}
		mt, q, ok := parseAcceptPart(part)
		if !ok {
			continue
		}
		specs = append(specs, AcceptSpec{MediaType: mt, Q: q, Order: i})
	}
	return specs
}

func parseAcceptPart(part string) (MediaType, int, bool) {
	slash := strings.IndexByte(part, '/')
	if slash < 0 {
		return MediaType{}, 0, false
	}
	typ := part[:slash]
	rest := part[slash+1:]

	q := 1000
	subtype := rest
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		subtype = rest[:semi]
		params := parseParams(rest[semi+1:])
		if qstr, ok := params["q"]; ok {
			parsedQ, ok := parseQuality(qstr)
			if !ok {
				return MediaType{}, 0, false
			}
			q = parsedQ
			delete(params, "q")
		}
		if len(params) == 0 {
			params = nil
		}
		typ = trimWhitespace(typ)
		subtype = trimWhitespace(subtype)
		if typ == "" || subtype == "" {
			return MediaType{}, 0, false
		}
		return MediaType{Type: typ, Subtype: subtype, Params: params}, q, true
	}

	typ = trimWhitespace(typ)
	subtype = trimWhitespace(subtype)
	if typ == "" || subtype == "" {
		return MediaType{}, 0, false
	}
	return MediaType{Type: typ, Subtype: subtype}, q, true
}

// parseQuality parses a q-value string ("1", "1.0", "0.857", "0") into an
// integer in [0,1000]. Returns false if the value is out of range or
// malformed — a hand-rolled parser avoiding strconv.ParseFloat's allocation
// and locale handling for a value that is always "0".ddd or "1"."0"{0,3}.
func parseQuality(s string) (int, bool) {
	s = trimWhitespace(s)
	if s == "" {
		return 0, false
	}
	if s == "1" || strings.HasPrefix(s, "1.") {
		if s == "1" {
			return 1000, true
		}
		frac := s[2:]
		if len(frac) > 3 {
			return 0, false
		}
		for _, c := range frac {
			if c != '0' {
				return 0, false // > 1.000 is invalid
			}
		}
		return 1000, true
	}
	if !strings.HasPrefix(s, "0") {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if len(s) < 2 || s[1] != '.' {
		return 0, false
	}
	frac := s[2:]
	if len(frac) == 0 || len(frac) > 3 {
		return 0, false
	}
	frac = frac + strings.Repeat("0", 3-len(frac))
	n, err := strconv.Atoi(frac)
	if err != nil {
		return 0, false
	}
	return n, true
}

// specificity scores a media-type match: exact/exact=3, type/wildcard-sub=2,
// wildcard-type(implies wildcard-sub)=1, no match=0.
func specificity(produced MediaType, accepted MediaType) int {
	if accepted.IsWildcardType() {
		return 1
	}
	if !strings.EqualFold(accepted.Type, produced.Type) {
		return 0
	}
	if accepted.IsWildcardSubtype() {
		return 2
	}
	if strings.EqualFold(accepted.Subtype, produced.Subtype) {
		return 3
	}
	return 0
}

// Negotiate picks the best of `produced` against a parsed Accept header,
// per RFC 7231 §5.3.2: highest q-value first, ties broken by specificity
// (exact > subtype-wildcard > type-wildcard), then by the produced
// candidate's position (first-registered wins).
//
// If accept is empty, the first produced media type is returned (no Accept
// header means "anything", and a server should return its preferred
// representation). Returns false if nothing in produced satisfies any
// non-zero-q range in accept.
func Negotiate(produced []MediaType, accept []AcceptSpec) (MediaType, bool) {
	if len(produced) == 0 {
		return MediaType{}, false
	}
	if len(accept) == 0 {
		return produced[0], true
	}

	var best *scoredCandidate
	for pi, p := range produced {
		for _, a := range accept {
			if a.Q <= 0 {
				continue
			}
			s := specificity(p, a.MediaType)
			if s == 0 {
				continue
			}
			cand := scoredCandidate{mt: p, q: a.Q, spec: s, order: pi}
			if best == nil || cand.better(*best) {
				c := cand
				best = &c
			}
		}
	}
	if best == nil {
		return MediaType{}, false
	}
	return best.mt, true
}

type scoredCandidate struct {
	mt    MediaType
	q     int
	spec  int
	order int
}

func (a scoredCandidate) better(b scoredCandidate) bool {
	if a.q != b.q {
		return a.q > b.q
	}
	if a.spec != b.spec {
		return a.spec > b.spec
	}
	return a.order < b.order
}
