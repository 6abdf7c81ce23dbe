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

package query

import (
	metricsutil "github.com/biothings/bte/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type queryMetrics struct {
	queryDurationSeconds       prometheus.Summary
	planDurationSeconds        prometheus.Summary
	resolveIDsDurationSeconds  prometheus.Summary
	executeEdgeDurationSeconds prometheus.Summary
	assembleDurationSeconds    prometheus.Summary
}

var metrics queryMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = queryMetrics{
		queryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "bte",
			Subsystem:  "query",
			Name:       "duration_seconds",
			Help:       `The time it takes to answer a query graph, from planning to results.`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
		planDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "bte",
			Subsystem:  "query",
			Name:       "plan_duration_seconds",
			Help:       `The time it takes to validate a query graph and order its edges.`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
		resolveIDsDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "bte",
			Subsystem:  "query",
			Name:       "resolve_ids_duration_seconds",
			Help:       `The time it takes to find the equivalent identifiers of a query's seeds.`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
		executeEdgeDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "bte",
			Subsystem: "query",
			Name:      "execute_edge_duration_seconds",
			Help: `The time it takes to resolve the records of one execution edge.

This is dominated by the edge resolver, and it's observed once per edge, so a
query with several edges contributes several observations.
`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
		assembleDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "bte",
			Subsystem:  "query",
			Name:       "assemble_duration_seconds",
			Help:       `The time it takes to join a query's records into results.`,
			Objectives: metricsutil.DefaultObjectives(),
		}),
	}
}
