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

package querygraph

import (
	metricsutil "github.com/biothings/bte/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type planMetrics struct {
	plansTotal   prometheus.Counter
	invalidTotal *prometheus.CounterVec
}

var metrics planMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = planMetrics{
		plansTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "bte",
			Subsystem: "querygraph",
			Name:      "plans_total",
			Help:      `The number of query graphs successfully planned.`,
		}),
		invalidTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bte",
			Subsystem: "querygraph",
			Name:      "invalid_total",
			Help: `The number of query graphs rejected by the planner.

The reason label matches querygraph.Reason, such as "cycle" or "unseeded".
`,
		}, []string{"reason"}),
	}
}
