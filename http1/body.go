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

package http1

import (
	"bufio"
	"io"
	"net/http/httputil"

	"github.com/rivaas-dev/corehttp/reqstream"
	"github.com/rivaas-dev/corehttp/routingerr"
)

// BodyReader streams a decoded request's body, enforcing maxRequestLength
// as bytes arrive (the chunked-encoding case can't be bounded up front
// since the final length isn't known until the terminating chunk).
type BodyReader struct {
	src     io.Reader
	tracker *reqstream.DecodedRequest
}

// NewBodyReader wraps br per head's framing (Content-Length or chunked),
// attaching a tracker that enforces maxRequestLength on every read.
func NewBodyReader(br *bufio.Reader, head *Head, tracker *reqstream.DecodedRequest) *BodyReader {
	var src io.Reader
	switch {
	case head.Chunked:
		src = httputil.NewChunkedReader(br)
	case head.ContentLength > 0:
		src = io.LimitReader(br, head.ContentLength)
	default:
		src = io.LimitReader(br, 0)
	}
	return &BodyReader{src: src, tracker: tracker}
}

// Read implements io.Reader, recording every successfully read byte count
// against the tracker and turning a maxRequestLength overflow into an
// error from the first Read call that crosses it. On overflow, only the
// bytes still within the limit are returned — the rest of p is read off
// the wire (so framing stays in sync) but never handed to the caller,
// mirroring net/http.MaxBytesReader rather than http2/adapter.go's
// check-before-append (Read has already pulled the bytes into p by the
// time the limit can be checked, so truncation has to happen here
// instead of before the read).
func (b *BodyReader) Read(p []byte) (int, error) {
	n, err := b.src.Read(p)
	if n > 0 {
		before := b.tracker.TransferredBytes()
		if werr := b.tracker.Write(n); werr != nil {
			allowed := 0
			if max := b.tracker.MaxLength; max > before {
				allowed = int(max - before)
			}
			return allowed, werr
		}
	}
	if err == io.EOF {
		b.tracker.Close(nil)
	}
	return n, err
}

// Discard reads and drops the remainder of the body, used when a handler
// doesn't consume it (keeps the connection in sync for the next request on
// Idle re-entry) or when transitioning to Discarding after an error.
func Discard(src io.Reader) error {
	_, err := io.Copy(io.Discard, src)
	if err != nil {
		return routingerr.Wrap(routingerr.ProtocolViolation, "failed to discard request body", err)
	}
	return nil
}
