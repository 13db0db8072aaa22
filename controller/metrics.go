// Copyright 2026 The sStreaming Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/prom"
)

// Metrics are the metrics of the controller. Nil fields are ignored.
type Metrics struct {
	// Events returns the counter of processed events of type typ with the
	// given result.
	Events func(typ, result string) metrics.Counter
	// Panics counts the events whose handler panicked.
	Panics metrics.Counter
	// Streams returns the gauge of the number of streams in state.
	Streams func(state string) metrics.Gauge
	// DriverRequests returns the counter of requests sent to the switches.
	DriverRequests func(typ, result string) metrics.Counter
	// UnicastFlows is the number of installed unicast flows.
	UnicastFlows metrics.Gauge
}

// NewMetrics creates the controller metrics and registers them with the
// default prometheus registry. It must be called at most once.
func NewMetrics() Metrics {
	events := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Name:      "events_total",
			Help:      "Total number of processed events.",
		},
		[]string{prom.LabelType, prom.LabelResult},
	)
	streams := promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: prom.Namespace,
			Name:      "streams",
			Help:      "Number of registered streams.",
		},
		[]string{prom.LabelState},
	)
	requests := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Name:      "driver_requests_total",
			Help:      "Total number of requests sent to the switches.",
		},
		[]string{prom.LabelType, prom.LabelResult},
	)
	return Metrics{
		Events: func(typ, result string) metrics.Counter {
			return events.WithLabelValues(typ, result)
		},
		Panics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Name:      "event_panics_total",
			Help:      "Total number of events whose handler panicked.",
		}),
		Streams: func(state string) metrics.Gauge {
			return streams.WithLabelValues(state)
		},
		DriverRequests: func(typ, result string) metrics.Counter {
			return requests.WithLabelValues(typ, result)
		},
		UnicastFlows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: prom.Namespace,
			Name:      "unicast_flows",
			Help:      "Number of installed unicast flows.",
		}),
	}
}
