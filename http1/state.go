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

// Package http1 implements the HTTP/1.1 request decoder state machine
// (component F): Idle, AwaitBody, Discarding (on protocol error) and
// Upgraded (h2c or a CONNECT tunnel), plus the policy checks (maxURILength,
// maxHeaderBytes, maxRequestLength, Expect/100-continue, chunked framing)
// that gate each transition.
package http1

// State is where the per-connection decoder sits between requests.
type State uint8

const (
	// Idle: waiting for the next request line.
	Idle State = iota
	// AwaitBody: request head decoded, streaming the body.
	AwaitBody
	// Discarding: a protocol error occurred; bytes are being read and
	// dropped until the connection can be safely closed.
	Discarding
	// Upgraded: the connection has been handed off (h2c or CONNECT) and
	// this decoder no longer owns it.
	Upgraded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitBody:
		return "await_body"
	case Discarding:
		return "discarding"
	case Upgraded:
		return "upgraded"
	default:
		return "unknown"
	}
}
