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
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/rivaas-dev/corehttp/routingerr"
)

// Limits bounds the resources a single request head/body may consume
// (spec §4.F); a zero value disables the corresponding check.
type Limits struct {
	MaxURILength     int
	MaxHeaderBytes    int64
	MaxRequestLength int64
}

// DefaultLimits mirrors conservative production defaults.
var DefaultLimits = Limits{
	MaxURILength:     8 * 1024,
	MaxHeaderBytes:   64 * 1024,
	MaxRequestLength: 10 * 1024 * 1024,
}

// Head is a fully decoded request line + headers, not yet including the
// body.
type Head struct {
	Method         string
	URI            string
	Proto          string
	Header         http.Header
	Host           string
	ContentLength  int64 // -1 for chunked framing; 0 if the header is absent
	Chunked        bool
	ExpectContinue bool
	KeepAlive      bool
}

// Decoder is a per-connection HTTP/1.1 decoder. It is not safe for
// concurrent use; a connection is handled by exactly one goroutine/event
// loop turn at a time, matching the cooperative single-threaded model the
// rest of this module assumes (spec §5).
type Decoder struct {
	limits       Limits
	state        State
	requestCount int
}

// New creates a Decoder with the given Limits (use DefaultLimits for a
// reasonable production baseline).
func New(limits Limits) *Decoder {
	return &Decoder{limits: limits, state: Idle}
}

// State returns the decoder's current state.
func (d *Decoder) State() State { return d.state }

// RequestCount reports how many request heads have been decoded on this
// connection so far (used by the keep-alive handler's maxRequests limit).
func (d *Decoder) RequestCount() int { return d.requestCount }

// DecodeHead reads and validates the next request line and header block
// from br. It must be called while State() == Idle; on success the
// decoder moves to AwaitBody (or stays Idle for an empty-body fast path —
// callers should call FinishBody regardless, which is a no-op when there
// is nothing to read). On a protocol error the decoder moves to
// Discarding and the returned *routingerr.Failure carries the status to
// send before closing the connection.
func (d *Decoder) DecodeHead(br *bufio.Reader) (*Head, *routingerr.Failure) {
	if d.state != Idle {
		return nil, routingerr.Wrap(routingerr.ProtocolViolation, "DecodeHead called out of state", nil)
	}

	lineLimit := 0
	if d.limits.MaxURILength > 0 {
		lineLimit = d.limits.MaxURILength + 64
	}
	line, err := readLine(br, lineLimit)
	if err != nil {
		d.state = Discarding
		return nil, failureFromReadErr(err)
	}
	if line == "" {
		// RFC 7230 §3.5 allows a leading blank line to be ignored.
		line, err = readLine(br, lineLimit)
		if err != nil {
			d.state = Discarding
			return nil, failureFromReadErr(err)
		}
	}

	method, uri, proto, ferr := parseRequestLine(line, d.limits.MaxURILength)
	if ferr != nil {
		d.state = Discarding
		return nil, ferr
	}

	// textproto.NewReader takes br directly (it already is a *bufio.Reader):
	// wrapping it in another bufio.Reader to enforce a byte limit would
	// silently pull body bytes into a throwaway buffer that's discarded
	// once header parsing returns, corrupting the body stream that
	// NewBodyReader reads from br afterwards. The size limit below is
	// therefore enforced after the fact instead of bounding the read.
	tp := textproto.NewReader(br)
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		d.state = Discarding
		return nil, routingerr.ErrMalformedRequestLine
	}
	header := http.Header(mimeHeader)
	if d.limits.MaxHeaderBytes > 0 && headerByteSize(header) > d.limits.MaxHeaderBytes {
		d.state = Discarding
		return nil, routingerr.ErrHeaderTooLarge
	}

	head := &Head{Method: method, URI: uri, Proto: proto, Header: header, Host: header.Get("Host")}
	head.KeepAlive = proto == "HTTP/1.1"
	if conn := header.Get("Connection"); conn != "" {
		head.KeepAlive = !strings.EqualFold(conn, "close")
	}

	if ferr := d.applyFraming(head); ferr != nil {
		d.state = Discarding
		return nil, ferr
	}

	if ferr := validateExpect(head); ferr != nil {
		d.state = Discarding
		return nil, ferr
	}

	if method == http.MethodHead || head.ContentLength == 0 && !head.Chunked {
		d.state = Idle // empty-body fast path; no AwaitBody needed
	} else {
		d.state = AwaitBody
	}
	d.requestCount++
	return head, nil
}

// FinishBody returns the decoder to Idle after a body started in
// AwaitBody has been fully consumed (or discarded), ready to decode the
// next request line.
func (d *Decoder) FinishBody() {
	if d.state == AwaitBody {
		d.state = Idle
	}
}

// Discard puts the decoder into Discarding, e.g. because a handler
// rejected the request before reading its body and the caller has decided
// not to resynchronize by draining it.
func (d *Decoder) Discard() {
	d.state = Discarding
}

func headerByteSize(header http.Header) int64 {
	var total int64
	for k, values := range header {
		for _, v := range values {
			total += int64(len(k)) + int64(len(v)) + 4 // ": " + "\r\n"
		}
	}
	return total
}

// applyFraming determines Content-Length vs. chunked Transfer-Encoding,
// rejecting ambiguous or malformed combinations (spec: malformed/negative
// content-length -> 400; CONNECT/UNKNOWN handled by caller).
func (d *Decoder) applyFraming(head *Head) *routingerr.Failure {
	te := head.Header.Get("Transfer-Encoding")
	cl := head.Header.Values("Content-Length")

	if strings.EqualFold(te, "chunked") {
		if len(cl) > 0 {
			return routingerr.ErrMalformedContentLen
		}
		head.Chunked = true
		head.ContentLength = -1
		return nil
	}

	if len(cl) == 0 {
		head.ContentLength = 0
		return nil
	}
	if len(cl) > 1 {
		return routingerr.ErrMalformedContentLen
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl[0]), 10, 64)
	if err != nil || n < 0 {
		return routingerr.ErrMalformedContentLen
	}
	if d.limits.MaxRequestLength > 0 && n > d.limits.MaxRequestLength {
		return routingerr.ErrRequestTooLarge
	}
	head.ContentLength = n
	return nil
}

// validateExpect enforces the Expect header policy (spec §4.F / Design
// Notes open question: a value other than "100-continue" is a 417; HTTP/1.0
// requests never see a 100-continue response since the client can't have
// asked for one in a standards-compliant way).
func validateExpect(head *Head) *routingerr.Failure {
	expect := head.Header.Get("Expect")
	if expect == "" {
		return nil
	}
	if head.Proto != "HTTP/1.1" {
		head.Header.Del("Expect") // HTTP/1.0 clients' Expect is ignored, not honored
		return nil
	}
	if !strings.EqualFold(strings.TrimSpace(expect), "100-continue") {
		return routingerr.ErrExpectationFailed
	}
	head.ExpectContinue = true
	return nil
}

func parseRequestLine(line string, maxURILength int) (method, uri, proto string, failure *routingerr.Failure) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", routingerr.ErrMalformedRequestLine
	}
	method, uri, proto = parts[0], parts[1], strings.TrimSuffix(parts[2], "\r")

	if !isValidMethodToken(method) || !knownMethods[method] {
		return "", "", "", routingerr.ErrUnsupportedMethod
	}
	if proto != "HTTP/1.1" && proto != "HTTP/1.0" {
		return "", "", "", routingerr.ErrMalformedRequestLine
	}
	if maxURILength > 0 && len(uri) > maxURILength {
		return "", "", "", routingerr.ErrURITooLong
	}
	if uri == "" {
		return "", "", "", routingerr.ErrInvalidPath
	}
	if uri == "*" && method != http.MethodOptions {
		return "", "", "", routingerr.ErrInvalidPath
	}
	if uri != "*" && !strings.HasPrefix(uri, "/") && method != http.MethodConnect {
		return "", "", "", routingerr.ErrInvalidPath
	}
	return method, uri, proto, nil
}

// knownMethods is the set of HTTP verbs this decoder accepts at decode
// time (spec line 122: "unsupported/unknown method (→405)"). A request
// whose method is a syntactically valid token but not in this set (e.g.
// PROPFIND) is rejected here, independent of whatever routes happen to be
// registered at its path. CONNECT is included: it's a well-formed verb,
// but since no route declares it among its Methods, it still ends up
// 405'd through ordinary method-mismatch routing (spec line 125: "Handle
// CONNECT and UNKNOWN methods → 405"), not through this allowlist.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
	http.MethodConnect: true,
}

func isValidMethodToken(m string) bool {
	if m == "" {
		return false
	}
	for _, c := range m {
		if c <= 0x20 || c == 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", c) {
			return false
		}
	}
	return true
}

func readLine(br *bufio.Reader, maxLen int) (string, error) {
	var b strings.Builder
	for {
		chunk, isPrefix, err := bufioReadLine(br)
		if err != nil {
			return "", err
		}
		b.Write(chunk)
		if maxLen > 0 && b.Len() > maxLen {
			return "", errLineTooLong
		}
		if !isPrefix {
			break
		}
	}
	return strings.TrimSuffix(b.String(), "\r"), nil
}

// bufioReadLine wraps bufio.Reader.ReadLine to keep readLine testable
// without pulling in a second buffering layer.
func bufioReadLine(br *bufio.Reader) ([]byte, bool, error) {
	return br.ReadLine()
}
