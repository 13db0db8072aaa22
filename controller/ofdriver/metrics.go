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

package ofdriver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/prom"
)

// Metrics are the driver metrics. Nil fields are ignored.
type Metrics struct {
	// Switches is the number of connected switches.
	Switches metrics.Gauge
	// Messages returns the counter of received messages of type typ.
	Messages func(typ string) metrics.Counter
}

// NewMetrics creates the driver metrics and registers them with the default
// prometheus registry. It must be called at most once.
func NewMetrics() Metrics {
	messages := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "openflow",
			Name:      "messages_received_total",
			Help:      "Total number of messages received from switches.",
		},
		[]string{prom.LabelType},
	)
	return Metrics{
		Switches: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: prom.Namespace,
			Subsystem: "openflow",
			Name:      "switches",
			Help:      "Number of connected switches.",
		}),
		Messages: func(typ string) metrics.Counter {
			return messages.WithLabelValues(typ)
		},
	}
}
