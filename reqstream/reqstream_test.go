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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/corehttp/routingerr"
)

func TestDecodedRequestWriteAccounting(t *testing.T) {
	d := NewDecodedRequest(1, 0, 100)
	require.Equal(t, Open, d.State())

	require.NoError(t, d.Write(50))
	assert.Equal(t, Writing, d.State())
	assert.Equal(t, int64(50), d.TransferredBytes())

	require.NoError(t, d.Write(50))
	assert.Equal(t, int64(100), d.TransferredBytes())
}

func TestDecodedRequestExceedsMaxLength(t *testing.T) {
	d := NewDecodedRequest(1, 0, 100)
	require.NoError(t, d.Write(60))
	err := d.Write(60)
	require.Error(t, err)

	var failure *routingerr.Failure
	require.True(t, routingerr.As(err, &failure))
	assert.Equal(t, 413, failure.Status)
	assert.Equal(t, ClosedError, d.State())
}

func TestDecodedRequestCloseIsIdempotent(t *testing.T) {
	d := NewDecodedRequest(1, 0, 0)
	d.Close(nil)
	assert.Equal(t, ClosedSuccess, d.State())
	d.Close(routingerr.ErrConnClosed)
	assert.Equal(t, ClosedSuccess, d.State(), "second Close must not override the first")
}

func TestInboundTrafficControllerWatermarks(t *testing.T) {
	var suspended, resumed int
	c := NewInboundTrafficController(2, 1, func() { suspended++ }, func() { resumed++ })

	c.Acquire()
	assert.False(t, c.Suspended())
	c.Acquire()
	assert.True(t, c.Suspended())
	assert.Equal(t, 1, suspended)

	c.Release()
	assert.True(t, c.Suspended(), "still at lowWatermark, not below it")
	c.Release()
	assert.False(t, c.Suspended())
	assert.Equal(t, 1, resumed)
}
