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

// Package reqstream models an in-flight request body as it streams in from
// either the HTTP/1.1 or HTTP/2 decoder (component C/F/G): its lifecycle
// state, byte accounting against maxRequestLength, and the backpressure
// watermark controller shared across a connection's requests.
package reqstream

import (
	"sync"
	"sync/atomic"

	"github.com/rivaas-dev/corehttp/routingerr"
)

// State is where a DecodedRequest sits in its lifecycle.
type State uint8

const (
	Open State = iota
	Writing
	ClosedSuccess
	ClosedError
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Writing:
		return "writing"
	case ClosedSuccess:
		return "closed_success"
	case ClosedError:
		return "closed_error"
	default:
		return "unknown"
	}
}

// DecodedRequest tracks one request body's transfer, independent of
// whether it arrived over HTTP/1.1 chunked/length-delimited framing or
// HTTP/2 DATA frames.
type DecodedRequest struct {
	ID              uint64
	StreamID        uint32 // 0 for HTTP/1.1 (connection-scoped, not stream-scoped)
	MaxLength       int64  // 0 = unlimited
	transferred     int64
	mu              sync.Mutex
	state           State
	err             error
}

// NewDecodedRequest creates a request tracker. maxLength of 0 disables the
// maxRequestLength check.
func NewDecodedRequest(id uint64, streamID uint32, maxLength int64) *DecodedRequest {
	return &DecodedRequest{ID: id, StreamID: streamID, MaxLength: maxLength, state: Open}
}

// State returns the current lifecycle state.
func (d *DecodedRequest) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// TransferredBytes reports how many body bytes have been accepted so far.
func (d *DecodedRequest) TransferredBytes() int64 {
	return atomic.LoadInt64(&d.transferred)
}

// Write records n additional bytes of body arriving. It enforces
// maxRequestLength (spec's 413/ContentTooLargeException case), transitions
// Open→Writing on the first call, and closes the request with an error if
// the limit is exceeded.
func (d *DecodedRequest) Write(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == ClosedSuccess || d.state == ClosedError {
		return routingerr.ErrConnClosed
	}
	if d.state == Open {
		d.state = Writing
	}

	total := atomic.AddInt64(&d.transferred, int64(n))
	if d.MaxLength > 0 && total > d.MaxLength {
		d.state = ClosedError
		d.err = routingerr.ErrRequestTooLarge
		return d.err
	}
	return nil
}

// Close transitions the request to its terminal state. Calling Close more
// than once is a no-op; only the first call's err is recorded.
func (d *DecodedRequest) Close(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == ClosedSuccess || d.state == ClosedError {
		return
	}
	if err != nil {
		d.state = ClosedError
		d.err = err
	} else {
		d.state = ClosedSuccess
	}
}

// Err returns the error the request was closed with, if any.
func (d *DecodedRequest) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
