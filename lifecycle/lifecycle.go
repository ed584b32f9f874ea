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

// Package lifecycle implements the per-connection keep-alive handler and
// graceful-shutdown coordination (spec §4.H): four timers (idle,
// ping-interval, max-age, max-requests) driving a connection through
// Active -> Draining -> Closing, plus a drain barrier built on errgroup
// that waits for every in-flight connection to reach Draining before a
// server-wide shutdown proceeds to Closing.
package lifecycle

import (
	"time"
)

// Phase is where a connection sits in its lifecycle.
type Phase int

const (
	Active Phase = iota
	Draining
	Closing
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Timeouts configures the four timers a KeepAliveHandler enforces. A zero
// duration disables the corresponding timer, mirroring
// router.WithServerTimeouts' "zero means use the http.Server default"
// convention.
type Timeouts struct {
	IdleTimeout    time.Duration // no I/O observed
	PingInterval   time.Duration // protocol-level heartbeat cadence
	MaxAge         time.Duration // connection lifetime regardless of activity
	MaxRequests    int           // requests served before forcing Draining; 0 disables
	RequestTimeout time.Duration // per-request deadline; 0 disables
}

// DefaultTimeouts mirrors the teacher's defaultServerTimeouts: conservative
// values suitable for an internet-facing listener.
var DefaultTimeouts = Timeouts{
	IdleTimeout:    120 * time.Second,
	PingInterval:   30 * time.Second,
	MaxAge:         0,
	MaxRequests:    0,
	RequestTimeout: 0,
}

// KeepAliveHandler owns one connection's lifecycle state. It is not safe
// for concurrent use: per spec §5 it is pinned to the single worker
// handling that connection, same as the HTTP/1 Decoder and HTTP/2 Adapter.
type KeepAliveHandler struct {
	timeouts Timeouts

	phase          Phase
	opened         time.Time
	lastActivity   time.Time
	requestsServed int

	now func() time.Time
}

// New creates a KeepAliveHandler in the Active phase. nowFn lets tests
// substitute a deterministic clock; pass nil to use time.Now.
func New(timeouts Timeouts, nowFn func() time.Time) *KeepAliveHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()
	return &KeepAliveHandler{
		timeouts:     timeouts,
		phase:        Active,
		opened:       now,
		lastActivity: now,
		now:          nowFn,
	}
}

// Phase reports the connection's current lifecycle phase.
func (h *KeepAliveHandler) Phase() Phase { return h.phase }

// RequestsServed reports how many requests have completed on this
// connection.
func (h *KeepAliveHandler) RequestsServed() int { return h.requestsServed }

// Touch resets the idle deadline; callers invoke this on every read or
// write (spec §4.F "each read or write resets the idle deadline").
func (h *KeepAliveHandler) Touch() {
	h.lastActivity = h.now()
}

// RequestCompleted increments the served-request count and transitions to
// Draining if MaxRequests has been reached. It returns true if this
// request's response must carry Connection: close (HTTP/1) or trigger a
// phase-1 GOAWAY (HTTP/2).
func (h *KeepAliveHandler) RequestCompleted() (shouldDrain bool) {
	h.requestsServed++
	h.Touch()
	if h.timeouts.MaxRequests > 0 && h.requestsServed >= h.timeouts.MaxRequests {
		h.beginDraining()
	}
	return h.phase != Active
}

// BeginShutdown forces the connection into Draining, e.g. because the
// server received an operator shutdown signal. It is idempotent.
func (h *KeepAliveHandler) BeginShutdown() {
	h.beginDraining()
}

// BeginClosing transitions Draining -> Closing. Calling it while Active is
// a caller error (it is a no-op) since Closing always follows Draining.
func (h *KeepAliveHandler) BeginClosing() {
	if h.phase == Draining {
		h.phase = Closing
	}
}

func (h *KeepAliveHandler) beginDraining() {
	if h.phase == Active {
		h.phase = Draining
	}
}

// CheckTimers evaluates the idle, max-age, and ping-interval deadlines
// against the current time and transitions to Draining if the max-age or
// idle deadline has elapsed; a due ping-interval is reported but leaves the
// phase unchanged. It returns which timer fired, or "" if none did. Callers
// invoke this from their connection's event loop tick.
func (h *KeepAliveHandler) CheckTimers() (firedTimer string) {
	now := h.now()

	if h.timeouts.MaxAge > 0 && now.Sub(h.opened) >= h.timeouts.MaxAge {
		h.beginDraining()
		return "max-age"
	}
	if h.timeouts.IdleTimeout > 0 && now.Sub(h.lastActivity) >= h.timeouts.IdleTimeout {
		h.beginDraining()
		return "idle"
	}
	if h.timeouts.PingInterval > 0 && now.Sub(h.lastActivity) >= h.timeouts.PingInterval {
		return "ping-interval" // heartbeat due; does not itself force Draining
	}
	return ""
}

// NeedsImmediateDisconnection reports whether a request timeout breach
// should tear down the whole connection rather than merely failing the
// one in-flight request with a 503 (spec §4.H "is not torn down unless
// the handler's needsImmediateDisconnection says so"). This implementation
// disconnects once the connection is already Draining or Closing, since a
// stuck request on a connection that's already on its way out is not
// worth waiting on further.
func (h *KeepAliveHandler) NeedsImmediateDisconnection() bool {
	return h.phase != Active
}

// RequestDeadlineExceeded reports whether start, the time an in-flight
// request began, has exceeded RequestTimeout. Callers use this to decide
// when to fail a stuck request with 503 and abort its body stream (spec
// §4.H "requestTimeoutMillis").
func (h *KeepAliveHandler) RequestDeadlineExceeded(start time.Time) bool {
	if h.timeouts.RequestTimeout <= 0 {
		return false
	}
	return h.now().Sub(start) >= h.timeouts.RequestTimeout
}
