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

// Package metrics defines the small metric interfaces that library code
// depends on. Library packages accept these interfaces and never register
// collectors themselves; binaries pass in prometheus backed values, tests
// pass in the fakes from this package.
//
// All helpers are nil safe, so an unset metric is simply not recorded:
//
//	metrics.CounterInc(m.Dropped)
package metrics

// Counter is a monotonically increasing value.
type Counter interface {
	Add(delta float64)
}

// Gauge is a value that can go up and down.
type Gauge interface {
	Set(v float64)
	Add(delta float64)
}

// CounterInc increases c by one. It is a no-op if c is nil.
func CounterInc(c Counter) {
	CounterAdd(c, 1)
}

// CounterAdd increases c by delta. It is a no-op if c is nil.
func CounterAdd(c Counter, delta float64) {
	if c == nil {
		return
	}
	c.Add(delta)
}

// GaugeSet sets g to v. It is a no-op if g is nil.
func GaugeSet(g Gauge, v float64) {
	if g == nil {
		return
	}
	g.Set(v)
}

// GaugeAdd adds delta to g. It is a no-op if g is nil.
func GaugeAdd(g Gauge, delta float64) {
	if g == nil {
		return
	}
	g.Add(delta)
}
