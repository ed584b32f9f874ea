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

package http2

import (
	"math"
	"time"

	"golang.org/x/net/http2"
)

// goAwayState tracks where a connection is in its two-phase graceful
// shutdown (spec §4.H): phase 1 announces the intent to stop accepting
// new streams without actually closing any (lastStreamID = 2^31-1, the
// maximum possible), giving in-flight streams a grace period to finish;
// phase 2 sends the real, final GOAWAY once the grace period elapses or
// every stream has completed, whichever comes first.
type goAwayState struct {
	phase1Sent bool
	phase2Sent bool
}

// maxStreamID is 2^31-1, used as phase 1's lastStreamID to signal "no
// streams are being rejected yet" per RFC 7540 §6.8.
const maxStreamID = math.MaxInt32

// BeginGraceful starts two-phase shutdown: it sends the phase-1 GOAWAY
// immediately, then waits up to gracePeriod (or until drained returns
// true) before sending the final GOAWAY with lastStreamID set to the
// highest stream this connection actually processed.
func (a *Adapter) BeginGraceful(gracePeriod time.Duration, drained func() bool) error {
	if a.goAway == nil {
		a.goAway = &goAwayState{}
	}
	if !a.goAway.phase1Sent {
		if err := a.framer.WriteGoAway(maxStreamID, http2.ErrCodeNo, nil); err != nil {
			return err
		}
		a.goAway.phase1Sent = true
	}

	deadline := time.Now().Add(gracePeriod)
	for time.Now().Before(deadline) {
		if drained != nil && drained() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return a.finishGraceful()
}

func (a *Adapter) finishGraceful() error {
	if a.goAway.phase2Sent {
		return nil
	}
	a.mu.Lock()
	var last uint32
	for id := range a.streams {
		if id > last {
			last = id
		}
	}
	a.mu.Unlock()

	a.goAway.phase2Sent = true
	return a.framer.WriteGoAway(last, http2.ErrCodeNo, nil)
}
