// Copyright 2020 Anapaya Systems
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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/sstreaming/sstreaming/pkg/metrics"
)

func TestHelpersNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.CounterInc(nil)
		metrics.CounterAdd(nil, 3)
		metrics.GaugeSet(nil, 1)
		metrics.GaugeAdd(nil, -1)
	})
}

func TestFakes(t *testing.T) {
	c := metrics.NewTestCounter()
	metrics.CounterInc(c)
	metrics.CounterAdd(c, 2)
	assert.Equal(t, float64(3), metrics.CounterValue(c))
	assert.Panics(t, func() { c.Add(-1) })

	g := metrics.NewTestGauge()
	metrics.GaugeSet(g, 5)
	metrics.GaugeAdd(g, -2)
	assert.Equal(t, float64(3), metrics.GaugeValue(g))
}

func TestPrometheusSatisfiesInterfaces(t *testing.T) {
	var _ metrics.Counter = prometheus.NewCounter(prometheus.CounterOpts{Name: "c"})
	var _ metrics.Gauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "g"})
}
