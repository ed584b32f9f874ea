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
	"errors"
	"io"

	"github.com/rivaas-dev/corehttp/routingerr"
)

var errLineTooLong = errors.New("http1: request line exceeds maxURILength")

func failureFromReadErr(err error) *routingerr.Failure {
	if errors.Is(err, errLineTooLong) {
		return routingerr.ErrURITooLong
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return routingerr.ErrConnClosed
	}
	return routingerr.Wrap(routingerr.ProtocolViolation, "failed to read request line", err)
}
