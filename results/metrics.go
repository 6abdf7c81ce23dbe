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

package results

import (
	metricsutil "github.com/biothings/bte/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type assemblerMetrics struct {
	assemblyDurationSeconds prometheus.Summary
	resultsTotal            prometheus.Counter
}

var metrics assemblerMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = assemblerMetrics{
		assemblyDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "bte",
			Subsystem: "results",
			Name:      "assembly_duration_seconds",
			Help: `The time it takes to join the records of all query edges into
results.

This grows with the number of results produced, not with the number of records.
`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
		resultsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "bte",
			Subsystem: "results",
			Name:      "results_total",
			Help:      `The number of results assembled.`,
		}),
	}
}
