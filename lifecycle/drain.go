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
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Connection is the minimal surface a connection's worker exposes to a
// server-wide Drainer: tell it to begin draining, and report once it has
// reached Closing (or otherwise finished).
type Connection interface {
	BeginShutdown()
	Wait(ctx context.Context) error
}

// Drainer coordinates a server-wide graceful shutdown across every
// open connection's worker (spec §5 "wait for all workers to observe
// Draining"). Each registered connection's Wait is run concurrently via
// errgroup.Group, bounded by the shutdown context's deadline.
type Drainer struct {
	conns []Connection
}

// NewDrainer creates an empty Drainer.
func NewDrainer() *Drainer {
	return &Drainer{}
}

// Register adds a connection to the set a future Shutdown will drain. It
// is the caller's responsibility to avoid registering after Shutdown has
// begun.
func (d *Drainer) Register(c Connection) {
	d.conns = append(d.conns, c)
}

// Shutdown signals every registered connection to begin draining and
// waits for all of them to finish, bounded by ctx. The first error from
// any connection's Wait is returned after all connections have been
// given the chance to complete (errgroup.Group cancels the derived
// context on first error but still drains the rest of the wait group).
func (d *Drainer) Shutdown(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range d.conns {
		c.BeginShutdown()
	}
	for _, c := range d.conns {
		conn := c
		g.Go(func() error {
			return conn.Wait(gctx)
		})
	}
	return g.Wait()
}

// WaitGracePeriod blocks until gracePeriod elapses or drained reports
// true, whichever comes first — the same polling shape http2.Adapter's
// BeginGraceful uses for its phase-1/phase-2 gap, reused here for
// HTTP/1 connections which have no GOAWAY frame to schedule around.
func WaitGracePeriod(gracePeriod time.Duration, drained func() bool) {
	deadline := time.Now().Add(gracePeriod)
	for time.Now().Before(deadline) {
		if drained != nil && drained() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
