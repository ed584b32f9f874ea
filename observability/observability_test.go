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

package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponseInfo struct {
	status int
	size   int64
}

func (f fakeResponseInfo) StatusCode() int { return f.status }
func (f fakeResponseInfo) Size() int64     { return f.size }

func TestNoopRecorder(t *testing.T) {
	r := Noop()
	ctx := r.OnRequestStart(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	w := r.WrapResponseWriter(ctx, httptest.NewRecorder())
	require.NotNil(t, w)
	r.OnRequestEnd(ctx, fakeResponseInfo{status: 200}, nil)
}

func TestPrometheusRecorderLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg, nil, "corehttp_test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	ctx := r.OnRequestStart(context.Background(), req)
	ctx = WithMethod(ctx, req.Method)
	r.OnRequestEnd(ctx, fakeResponseInfo{status: 200}, nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(500))
	assert.Equal(t, "unknown", statusClass(0))
}
