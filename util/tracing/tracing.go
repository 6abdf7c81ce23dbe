// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing assists with reporting OpenTracing spans and tying their
// durations to Prometheus metrics.
package tracing

import (
	"context"
	"strings"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric is satisfied by prometheus.Summary and prometheus.Histogram.
type Metric interface {
	prometheus.Metric
	Observe(float64)
}

// A Span is an OpenTracing span that also observes its duration into a
// metric when finished.
type Span struct {
	opentracing.Span
	metric Metric
	start  time.Time
	now    func() time.Time
}

// StartSpan starts a new span as a child of any span in 'ctx'. If 'metric' is
// not nil, the span's duration in seconds is observed into it by Finish. The
// returned context carries the new span.
func StartSpan(ctx context.Context, operationName string, metric Metric) (*Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operationName)
	s := &Span{
		Span:   span,
		metric: metric,
		now:    time.Now,
	}
	s.start = s.now()
	if metric != nil {
		span.SetTag("metric", MetricName(metric))
	}
	return s, ctx
}

// Finish completes the span and updates its metric. Calling Finish more than
// once is a programmer error, as it is for opentracing spans.
func (s *Span) Finish() {
	if s.metric != nil {
		s.metric.Observe(s.now().Sub(s.start).Seconds())
	}
	s.Span.Finish()
}

// MetricName returns the fully-qualified name of the metric.
func MetricName(metric prometheus.Metric) string {
	// Desc doesn't seem to have a way to extract the name.
	// Its Stringer outputs like this:
	//   Desc{fqName: %q, help: %q, constLabels: {%s}, variableLabels: %v}
	s := metric.Desc().String()
	s = strings.TrimPrefix(s, `Desc{fqName: "`)
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	return s[:i]
}
