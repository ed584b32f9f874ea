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

package http1

import "strings"

// H2CUpgrade describes an HTTP/1.1 → h2c upgrade request (spec §4.F
// "Upgrade event"): DetectH2CUpgrade has already stripped the listed
// hop-by-hop headers from StashedHead; the caller must respond with 101
// Switching Protocols (or proceed directly to the h2c
// preface per RFC 7540 §3.2 for a prior-knowledge upgrade), and re-feed
// StashedHead to the HTTP/2 adapter as its initial stream.
type H2CUpgrade struct {
	StashedHead     *Head
	HTTP2Settings   string // base64url HTTP2-Settings header value, undecoded
	StrippedHeaders []string
}

// hopByHopOnUpgrade lists the headers that must not survive the handoff to
// HTTP/2, since HTTP/2 has no Connection/Upgrade/TE framing concept.
var hopByHopOnUpgrade = []string{"Connection", "Upgrade", "HTTP2-Settings"}

// DetectH2CUpgrade inspects head for the h2c upgrade handshake
// (Connection: Upgrade, Upgrade: h2c, HTTP2-Settings: <base64>). Returns
// ok=false if this isn't an h2c upgrade request.
func DetectH2CUpgrade(head *Head) (*H2CUpgrade, bool) {
	if !headerTokenContains(head.Header.Get("Connection"), "upgrade") {
		return nil, false
	}
	if !strings.EqualFold(strings.TrimSpace(head.Header.Get("Upgrade")), "h2c") {
		return nil, false
	}
	settings := head.Header.Get("HTTP2-Settings")
	if settings == "" {
		return nil, false
	}

	up := &H2CUpgrade{StashedHead: head, HTTP2Settings: settings, StrippedHeaders: hopByHopOnUpgrade}
	for _, h := range hopByHopOnUpgrade {
		head.Header.Del(h)
	}
	return up, true
}

func headerTokenContains(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// FoldTrailers merges trailer header fields (received after chunked
// LastHttpContent) into the main header set, the way a single
// *http.Request's Header is expected to carry them by the time a handler
// runs - trailers arrive after the handler may have already inspected
// Header, so callers needing them mid-stream should consult Request.Trailer
// directly; FoldTrailers is for callers that finish reading the body
// first.
func FoldTrailers(header, trailer map[string][]string) {
	for k, v := range trailer {
		header[k] = append(header[k], v...)
	}
}
