// Copyright 2017 ETH Zurich
// Copyright 2018 ETH Zurich, Anapaya Systems
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

// Package prom contains some utility functions for dealing with prometheus
// metrics.
package prom

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the metric namespace shared by all controller metrics.
const Namespace = "controller"

// Common label names.
const (
	// LabelResult is the label for result classifications.
	LabelResult = "result"
	// LabelType is the label for the kind of event or request.
	LabelType = "type"
	// LabelState is the label for state machine states.
	LabelState = "state"
	// LabelLevel is the label for log levels.
	LabelLevel = "level"
)

// Common result values.
const (
	// Success is no error.
	Success = "ok_success"
	// ErrInternal is an internal error.
	ErrInternal = "err_internal"
	// ErrInvalidReq is an invalid request.
	ErrInvalidReq = "err_invalid_request"
	// ErrNotFound is used for errors where a resource is not found.
	ErrNotFound = "err_not_found"
	// ErrNetwork is used for errors when sending something over the network.
	ErrNetwork = "err_network"
	// ErrPanic is used when a handler panicked and was recovered.
	ErrPanic = "err_panic"
)

// ExportElementID exports the element ID as configured in the config file.
func ExportElementID(id string) {
	gv := SafeRegister(prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sstreaming",
			Name:      "elem_id",
			Help:      "The element ID from the config file",
		},
		[]string{"cfg"},
	)).(*prometheus.GaugeVec)
	gv.WithLabelValues(id).Set(1)
}

// SafeRegister registers c and returns the registered collector. If c was
// already registered the already registered collector is returned. In case of
// any other error this method panics (as MustRegister).
func SafeRegister(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// NewCounterVec creates a new prometheus counter vec in the controller
// namespace that is registered with the default registry.
func NewCounterVec(subsystem, name, help string, labelNames []string) *prometheus.CounterVec {
	return SafeRegister(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labelNames,
	)).(*prometheus.CounterVec)
}

// NewGaugeVec creates a new prometheus gauge vec in the controller namespace
// that is registered with the default registry.
func NewGaugeVec(subsystem, name, help string, labelNames []string) *prometheus.GaugeVec {
	return SafeRegister(prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labelNames,
	)).(*prometheus.GaugeVec)
}

// NewCounter creates a new prometheus counter in the controller namespace
// that is registered with the default registry.
func NewCounter(subsystem, name, help string) prometheus.Counter {
	return promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
	)
}
