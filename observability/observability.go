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

// Package observability defines the lifecycle hooks the router and
// decoders call into for logging, metrics and tracing, and a default no-op
// implementation used when nothing is configured.
package observability

import (
	"context"
	"log/slog"
	"net/http"
)

// ResponseInfo exposes the parts of a response a recorder needs once
// handling finishes, without coupling it to a concrete response writer.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}

// Recorder unifies metrics, tracing and logging lifecycle hooks around one
// request. OnRequestStart is called as soon as a route has matched (or
// failed to); WrapResponseWriter lets a recorder instrument the writer
// before the handler runs; OnRequestEnd is always called exactly once per
// OnRequestStart, even when the connection is cancelled.
type Recorder interface {
	// OnRequestStart is invoked once routing has produced a result (match
	// or deferred failure) for req, before the handler runs. The returned
	// context is threaded through to the handler and back to OnRequestEnd.
	OnRequestStart(ctx context.Context, req *http.Request) context.Context

	// WrapResponseWriter optionally wraps w (e.g. to capture status/size);
	// implementations that don't need to observe the response may return w
	// unchanged.
	WrapResponseWriter(ctx context.Context, w http.ResponseWriter) http.ResponseWriter

	// OnRequestEnd is called once handling completes, successfully or not.
	// err is non-nil only for failures that prevented a response from
	// being written at all (panics recovered upstream, cancellation).
	OnRequestEnd(ctx context.Context, info ResponseInfo, err error)
}

// noopRecorder discards every hook; used whenever no Recorder is configured.
type noopRecorder struct{}

// Noop returns the shared no-op Recorder.
func Noop() Recorder { return noopRecorder{} }

func (noopRecorder) OnRequestStart(ctx context.Context, _ *http.Request) context.Context {
	return ctx
}

func (noopRecorder) WrapResponseWriter(_ context.Context, w http.ResponseWriter) http.ResponseWriter {
	return w
}

func (noopRecorder) OnRequestEnd(context.Context, ResponseInfo, error) {}

// noopHandler discards every log record; it backs NoopLogger.
type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h noopHandler) WithGroup(string) slog.Handler            { return h }

// NoopLogger returns a *slog.Logger that discards everything, mirroring the
// singleton discard-logger pattern used when a component isn't given one.
var NoopLogger = slog.New(noopHandler{})
