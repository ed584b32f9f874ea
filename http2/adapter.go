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

// Package http2 adapts golang.org/x/net/http2's Framer into the
// frame-listener pattern the router expects (component G): HEADERS/DATA
// build up a routing.Context and DecodedRequest per stream, RST_STREAM and
// trailers close it, and a two-phase GOAWAY drives graceful shutdown.
package http2

import (
	"io"
	"net/http"
	"sync"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"

	"github.com/rivaas-dev/corehttp/reqstream"
	"github.com/rivaas-dev/corehttp/routing"
	"github.com/rivaas-dev/corehttp/routingerr"
)

// Handler receives each fully decoded request as it completes (its HEADERS
// arrived, with END_STREAM already observed or its body/trailers drained).
type Handler interface {
	HandleStream(stream *Stream)
}

// Stream is one HTTP/2 stream's decoded request.
type Stream struct {
	ID      uint32
	Context *routing.Context
	Header  http.Header
	Body    []byte
	request *reqstream.DecodedRequest
}

type streamState struct {
	id      uint32
	header  http.Header
	body    []byte
	tracker *reqstream.DecodedRequest
	headersDone bool
}

// Adapter owns one HTTP/2 connection's Framer and stream table. It is not
// safe for concurrent use from multiple goroutines; frames are processed
// one at a time, same cooperative model as the HTTP/1.1 decoder.
type Adapter struct {
	framer           *http2.Framer
	hpackDecoder     *hpack.Decoder
	maxRequestLength int64
	virtualHost      string

	mu      sync.Mutex
	streams map[uint32]*streamState

	handler Handler
	goAway  *goAwayState
}

// NewAdapter creates an Adapter writing frames to conn and reading from
// it, dispatching completed requests to handler.
func NewAdapter(conn io.ReadWriter, virtualHost string, maxRequestLength int64, handler Handler) *Adapter {
	a := &Adapter{
		framer:           http2.NewFramer(conn, conn),
		maxRequestLength: maxRequestLength,
		virtualHost:      virtualHost,
		streams:          make(map[uint32]*streamState),
		handler:          handler,
	}
	a.hpackDecoder = hpack.NewDecoder(4096, nil)
	return a
}

// ServeLoop reads and dispatches frames until the connection errors out or
// is closed. It returns the terminating error (io.EOF on a clean close).
func (a *Adapter) ServeLoop() error {
	for {
		fr, err := a.framer.ReadFrame()
		if err != nil {
			return err
		}
		if err := a.handleFrame(fr); err != nil {
			return err
		}
	}
}

func (a *Adapter) handleFrame(fr http2.Frame) error {
	switch f := fr.(type) {
	case *http2.HeadersFrame:
		return a.handleHeaders(f)
	case *http2.DataFrame:
		return a.handleData(f)
	case *http2.RSTStreamFrame:
		a.handleRSTStream(f)
		return nil
	case *http2.PingFrame:
		return a.handlePing(f)
	case *http2.GoAwayFrame:
		return nil // peer-initiated GOAWAY: caller's connection loop decides what to do
	default:
		return nil // SETTINGS/WINDOW_UPDATE/PRIORITY: no routing-relevant action here
	}
}

func (a *Adapter) handleHeaders(f *http2.HeadersFrame) error {
	a.mu.Lock()
	st, existing := a.streams[f.StreamID]
	if !existing {
		st = &streamState{id: f.StreamID, header: http.Header{}}
		st.tracker = reqstream.NewDecodedRequest(uint64(f.StreamID), f.StreamID, a.maxRequestLength)
		a.streams[f.StreamID] = st
	}
	a.mu.Unlock()

	hf, err := a.decodeHeaderBlock(f.HeaderBlockFragment())
	if err != nil {
		return routingerr.ErrMalformedFrame
	}

	if existing && st.headersDone {
		// A second HEADERS frame for a known stream carries trailers.
		for _, field := range hf {
			st.header.Add(field.Name, field.Value)
		}
	} else {
		applyPseudoHeaders(st, hf)
		st.headersDone = true
	}

	if f.StreamEnded() {
		a.finishStream(st)
	}
	return nil
}

func (a *Adapter) handleData(f *http2.DataFrame) error {
	a.mu.Lock()
	st := a.streams[f.StreamID]
	a.mu.Unlock()
	if st == nil {
		return nil // DATA for an unknown/already-closed stream: ignore
	}

	data := f.Data()
	if len(data) > 0 {
		if err := st.tracker.Write(len(data)); err != nil {
			a.sendRSTStream(f.StreamID, http2.ErrCodeFlowControl)
			a.removeStream(f.StreamID)
			return nil
		}
		st.body = append(st.body, data...)
	}

	if f.StreamEnded() {
		a.finishStream(st)
	}
	return nil
}

func (a *Adapter) handleRSTStream(f *http2.RSTStreamFrame) {
	a.mu.Lock()
	st := a.streams[f.StreamID]
	delete(a.streams, f.StreamID)
	a.mu.Unlock()
	if st != nil {
		st.tracker.Close(routingerr.ErrStreamReset)
	}
}

func (a *Adapter) handlePing(f *http2.PingFrame) error {
	if f.IsAck() {
		return nil
	}
	return a.framer.WritePing(true, f.Data)
}

func (a *Adapter) finishStream(st *streamState) {
	a.mu.Lock()
	delete(a.streams, st.id)
	a.mu.Unlock()

	st.tracker.Close(nil)
	if a.handler == nil {
		return
	}
	ctx := routing.NewContext(
		a.virtualHost,
		st.header.Get(":method"),
		st.header.Get(":path"),
		st.header.Get("content-type"),
		st.header.Get("accept"),
		headerLookup(st.header),
		nil,
	)
	a.handler.HandleStream(&Stream{ID: st.id, Context: ctx, Header: st.header, Body: st.body, request: st.tracker})
}

func (a *Adapter) removeStream(id uint32) {
	a.mu.Lock()
	delete(a.streams, id)
	a.mu.Unlock()
}

func (a *Adapter) sendRSTStream(id uint32, code http2.ErrCode) {
	_ = a.framer.WriteRSTStream(id, code)
}

// decodeHeaderBlock decodes block using the connection's single hpack
// decoder, which owns the dynamic table: HPACK's compression is stateful
// across an entire connection's HEADERS frames, so a fresh decoder per
// call would silently corrupt decoding as soon as a client referenced a
// previously indexed header.
func (a *Adapter) decodeHeaderBlock(block []byte) ([]hpack.HeaderField, error) {
	var fields []hpack.HeaderField
	a.hpackDecoder.SetEmitFunc(func(f hpack.HeaderField) {
		fields = append(fields, f)
	})
	if _, err := a.hpackDecoder.Write(block); err != nil {
		return nil, err
	}
	return fields, nil
}

func applyPseudoHeaders(st *streamState, fields []hpack.HeaderField) {
	for _, f := range fields {
		st.header.Add(f.Name, f.Value)
	}
}

func headerLookup(h http.Header) func(string) ([]string, bool) {
	return func(name string) ([]string, bool) {
		v, ok := h[http.CanonicalHeaderKey(name)]
		return v, ok
	}
}
