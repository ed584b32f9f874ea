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

package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestKeepAliveHandlerStartsActive(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(DefaultTimeouts, clock.now)
	assert.Equal(t, Active, h.Phase())
	assert.Equal(t, 0, h.RequestsServed())
}

func TestRequestCompletedTriggersMaxRequestsDrain(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(Timeouts{MaxRequests: 2}, clock.now)

	shouldDrain := h.RequestCompleted()
	assert.False(t, shouldDrain)
	assert.Equal(t, Active, h.Phase())

	shouldDrain = h.RequestCompleted()
	assert.True(t, shouldDrain)
	assert.Equal(t, Draining, h.Phase())
}

func TestCheckTimersMaxAge(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(Timeouts{MaxAge: time.Minute}, clock.now)

	assert.Equal(t, "", h.CheckTimers())
	clock.advance(2 * time.Minute)
	assert.Equal(t, "max-age", h.CheckTimers())
	assert.Equal(t, Draining, h.Phase())
}

func TestCheckTimersIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(Timeouts{IdleTimeout: 30 * time.Second}, clock.now)

	clock.advance(10 * time.Second)
	h.Touch()
	assert.Equal(t, "", h.CheckTimers())

	clock.advance(40 * time.Second)
	assert.Equal(t, "idle", h.CheckTimers())
	assert.Equal(t, Draining, h.Phase())
}

func TestBeginShutdownThenClosing(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(DefaultTimeouts, clock.now)

	h.BeginShutdown()
	assert.Equal(t, Draining, h.Phase())

	h.BeginClosing()
	assert.Equal(t, Closing, h.Phase())
}

func TestBeginClosingNoOpWhileActive(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(DefaultTimeouts, clock.now)

	h.BeginClosing()
	assert.Equal(t, Active, h.Phase(), "Closing only follows Draining")
}

func TestNeedsImmediateDisconnection(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(DefaultTimeouts, clock.now)

	require.False(t, h.NeedsImmediateDisconnection())
	h.BeginShutdown()
	assert.True(t, h.NeedsImmediateDisconnection())
}

func TestRequestDeadlineExceeded(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(Timeouts{RequestTimeout: 5 * time.Second}, clock.now)

	start := clock.t
	clock.advance(2 * time.Second)
	assert.False(t, h.RequestDeadlineExceeded(start))

	clock.advance(10 * time.Second)
	assert.True(t, h.RequestDeadlineExceeded(start))
}

func TestRequestDeadlineDisabledByZero(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(Timeouts{}, clock.now)
	clock.advance(time.Hour)
	assert.False(t, h.RequestDeadlineExceeded(time.Unix(0, 0)))
}
