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
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

type recordingHandler struct {
	mu      sync.Mutex
	streams []*Stream
}

func (h *recordingHandler) HandleStream(s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.streams = append(h.streams, s)
}

func (h *recordingHandler) snapshot() []*Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Stream(nil), h.streams...)
}

func encodeHeaders(fields []hpack.HeaderField) []byte {
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	for _, f := range fields {
		enc.WriteField(f)
	}
	return buf.Bytes()
}

func TestAdapterHandlesHeadersWithEndStream(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	handler := &recordingHandler{}
	adapter := NewAdapter(serverConn, "example.com", 1024, handler)
	go adapter.ServeLoop()

	clientFramer := http2.NewFramer(clientConn, clientConn)
	block := encodeHeaders([]hpack.HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/widgets"},
	})
	err := clientFramer.WriteHeaders(http2.HeadersFrameParam{
		StreamID:      1,
		BlockFragment: block,
		EndHeaders:    true,
		EndStream:     true,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(handler.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	stream := handler.snapshot()[0]
	assert.Equal(t, uint32(1), stream.ID)
	assert.Equal(t, "GET", stream.Context.Method)
	assert.Equal(t, "/widgets", stream.Context.Path)
}

func TestAdapterAccumulatesDataThenEndStream(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	handler := &recordingHandler{}
	adapter := NewAdapter(serverConn, "example.com", 1024, handler)
	go adapter.ServeLoop()

	clientFramer := http2.NewFramer(clientConn, clientConn)
	block := encodeHeaders([]hpack.HeaderField{
		{Name: ":method", Value: "POST"},
		{Name: ":path", Value: "/widgets"},
	})
	require.NoError(t, clientFramer.WriteHeaders(http2.HeadersFrameParam{
		StreamID: 3, BlockFragment: block, EndHeaders: true, EndStream: false,
	}))
	require.NoError(t, clientFramer.WriteData(3, true, []byte("hello")))

	require.Eventually(t, func() bool {
		return len(handler.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	stream := handler.snapshot()[0]
	assert.Equal(t, "hello", string(stream.Body))
}

func TestAdapterRSTStreamCancelsTracking(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	handler := &recordingHandler{}
	adapter := NewAdapter(serverConn, "example.com", 1024, handler)
	go adapter.ServeLoop()

	clientFramer := http2.NewFramer(clientConn, clientConn)
	block := encodeHeaders([]hpack.HeaderField{{Name: ":method", Value: "GET"}, {Name: ":path", Value: "/x"}})
	require.NoError(t, clientFramer.WriteHeaders(http2.HeadersFrameParam{
		StreamID: 5, BlockFragment: block, EndHeaders: true, EndStream: false,
	}))
	require.NoError(t, clientFramer.WriteRSTStream(5, http2.ErrCodeCancel))

	require.Eventually(t, func() bool {
		adapter.mu.Lock()
		defer adapter.mu.Unlock()
		_, exists := adapter.streams[5]
		return !exists
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, handler.snapshot())
}
