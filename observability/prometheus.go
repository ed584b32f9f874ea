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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PrometheusRecorder records request counts/latency/in-flight gauges to a
// Prometheus registry and opens a span per request through an OTel tracer,
// mirroring the teacher's metrics.go/tracing.go wiring pattern: a Recorder
// is built once, registered into *http.Server via the router's options, and
// every hook is allocation-light enough to run on the hot path.
type PrometheusRecorder struct {
	tracer   trace.Tracer
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

type startKey struct{}
type spanKey struct{}

// NewPrometheusRecorder registers its metrics into reg and returns a ready
// Recorder. Passing a component-specific subsystem name keeps multiple
// routers' metrics distinguishable in one registry.
func NewPrometheusRecorder(reg prometheus.Registerer, tracer trace.Tracer, subsystem string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		tracer: tracer,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total requests routed, labeled by method and status class.",
		}, []string{"method", "status_class"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Requests currently being handled.",
		}),
	}
	for _, c := range []prometheus.Collector{r.requests, r.latency, r.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) OnRequestStart(ctx context.Context, req *http.Request) context.Context {
	r.inFlight.Inc()
	ctx = context.WithValue(ctx, startKey{}, time.Now())
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, req.Method+" "+req.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.path", req.URL.Path),
			))
		ctx = context.WithValue(ctx, spanKey{}, span)
	}
	return ctx
}

func (r *PrometheusRecorder) WrapResponseWriter(_ context.Context, w http.ResponseWriter) http.ResponseWriter {
	return w
}

func (r *PrometheusRecorder) OnRequestEnd(ctx context.Context, info ResponseInfo, err error) {
	r.inFlight.Dec()
	method, _ := ctx.Value(methodKey{}).(string)
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		r.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}

	status := 0
	if info != nil {
		status = info.StatusCode()
	}
	r.requests.WithLabelValues(method, statusClass(status)).Inc()

	if span, ok := ctx.Value(spanKey{}).(trace.Span); ok {
		if err != nil {
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.End()
	}
}

// methodKey lets callers stash the request method into ctx before
// OnRequestStart's context is available to OnRequestEnd's caller; routers
// typically set this immediately after OnRequestStart returns.
type methodKey struct{}

// WithMethod annotates ctx with the request method for latency labeling.
func WithMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey{}, method)
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "unknown"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
