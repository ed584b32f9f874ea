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

package reqstream

import "sync"

// InboundTrafficController applies request-level backpressure on a
// connection: once the number of in-flight (unconsumed) requests crosses
// highWatermark, callers should stop reading more requests off the wire
// until it drops below lowWatermark.
type InboundTrafficController struct {
	mu             sync.Mutex
	high           int
	low            int
	inFlight       int
	suspended      bool
	onSuspend      func()
	onResume       func()
}

// NewInboundTrafficController creates a controller. onSuspend/onResume are
// called (synchronously, under the controller's lock released first) when
// the watermark is crossed in either direction; either may be nil.
func NewInboundTrafficController(high, low int, onSuspend, onResume func()) *InboundTrafficController {
	if low > high {
		low = high
	}
	return &InboundTrafficController{high: high, low: low, onSuspend: onSuspend, onResume: onResume}
}

// Acquire records one more in-flight request, suspending the connection's
// read side if this crosses highWatermark.
func (c *InboundTrafficController) Acquire() {
	c.mu.Lock()
	c.inFlight++
	crossed := !c.suspended && c.inFlight >= c.high
	if crossed {
		c.suspended = true
	}
	cb := c.onSuspend
	c.mu.Unlock()

	if crossed && cb != nil {
		cb()
	}
}

// Release records that an in-flight request completed, resuming the
// connection's read side if this drops below lowWatermark.
func (c *InboundTrafficController) Release() {
	c.mu.Lock()
	if c.inFlight > 0 {
		c.inFlight--
	}
	crossed := c.suspended && c.inFlight < c.low
	if crossed {
		c.suspended = false
	}
	cb := c.onResume
	c.mu.Unlock()

	if crossed && cb != nil {
		cb()
	}
}

// Suspended reports whether the controller currently wants reads paused.
func (c *InboundTrafficController) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// InFlight reports the current in-flight request count.
func (c *InboundTrafficController) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
