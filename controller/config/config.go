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

// Package config describes the configuration of the controller.
package config

import (
	"io"
	"net"
	"time"

	"github.com/sstreaming/sstreaming/controller"
	"github.com/sstreaming/sstreaming/controller/ofdriver"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/pkg/private/util"
	"github.com/sstreaming/sstreaming/private/config"
	"github.com/sstreaming/sstreaming/private/env"
)

const idSample = "controller-1"

// maxIdleTimeout is the largest idle timeout a flow entry can carry.
const maxIdleTimeout = 65535 * time.Second

var _ config.Config = (*Config)(nil)

// Config is the controller configuration.
type Config struct {
	General   env.General     `toml:"general,omitempty"`
	Logging   log.Config      `toml:"log,omitempty"`
	Metrics   env.Metrics     `toml:"metrics,omitempty"`
	API       API             `toml:"api,omitempty"`
	OpenFlow  ofdriver.Config `toml:"openflow,omitempty"`
	Streaming Streaming       `toml:"streaming,omitempty"`
	Switching Switching       `toml:"switching,omitempty"`
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.OpenFlow,
		&cfg.Streaming,
		&cfg.Switching,
	)
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.OpenFlow,
		&cfg.Streaming,
		&cfg.Switching,
	)
}

// Sample generates a sample config file for the controller.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.OpenFlow,
		&cfg.Streaming,
		&cfg.Switching,
	)
}

// ConfigName is the toml key.
func (cfg *Config) ConfigName() string {
	return "controller_config"
}

// State returns the configuration of the controller state.
func (cfg *Config) State() controller.Config {
	return controller.Config{
		DefaultRate: cfg.Streaming.DefaultRate,
		Switching:   cfg.Switching.Module(),
	}
}

var _ config.Config = (*API)(nil)

// API is the [api] block.
type API struct {
	config.NoDefaulter
	// Addr is the address the management API and the status pages are
	// served on. If empty, the API is disabled.
	Addr string `toml:"addr,omitempty"`
}

func (cfg *API) Validate() error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return serrors.Wrap("invalid api addr", err, "addr", cfg.Addr)
	}
	return nil
}

func (cfg *API) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, apiSample)
}

func (cfg *API) ConfigName() string {
	return "api"
}

var _ config.Config = (*Streaming)(nil)

// Streaming is the [streaming] block.
type Streaming struct {
	// DefaultRate is the rate in kbps of streams whose source does not
	// announce one.
	DefaultRate uint32 `toml:"default_rate,omitempty"`
}

func (cfg *Streaming) InitDefaults() {
	if cfg.DefaultRate == 0 {
		cfg.DefaultRate = controller.DefaultRate
	}
}

func (cfg *Streaming) Validate() error {
	if cfg.DefaultRate == 0 {
		return serrors.New("default_rate must be positive")
	}
	return nil
}

func (cfg *Streaming) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, streamingSample)
}

func (cfg *Streaming) ConfigName() string {
	return "streaming"
}

var _ config.Config = (*Switching)(nil)

// Switching is the [switching] block.
type Switching struct {
	// DisableMultipath restricts unicast flows to a single shortest path.
	DisableMultipath bool `toml:"disable_multipath,omitempty"`
	// IdleTimeout of unicast flow entries.
	IdleTimeout util.DurWrap `toml:"idle_timeout,omitempty"`
	// SuppressWindow is the time during which repeated requests for the
	// same destination at the same switch are not recomputed.
	SuppressWindow util.DurWrap `toml:"suppress_window,omitempty"`
}

func (cfg *Switching) InitDefaults() {
	if cfg.IdleTimeout.Duration == 0 {
		cfg.IdleTimeout.Duration = switching.DefaultIdleTimeout
	}
	if cfg.SuppressWindow.Duration == 0 {
		cfg.SuppressWindow.Duration = switching.DefaultSuppressWindow
	}
}

func (cfg *Switching) Validate() error {
	if cfg.IdleTimeout.Duration < time.Second || cfg.IdleTimeout.Duration > maxIdleTimeout {
		return serrors.New("idle_timeout out of range", "value", cfg.IdleTimeout,
			"min", time.Second, "max", maxIdleTimeout)
	}
	if cfg.SuppressWindow.Duration < 0 {
		return serrors.New("suppress_window must not be negative", "value",
			cfg.SuppressWindow)
	}
	return nil
}

func (cfg *Switching) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, switchingSample)
}

func (cfg *Switching) ConfigName() string {
	return "switching"
}

// Module returns the configuration of the switching module.
func (cfg *Switching) Module() switching.Config {
	return switching.Config{
		Multipath:      !cfg.DisableMultipath,
		IdleTimeout:    cfg.IdleTimeout.Duration,
		SuppressWindow: cfg.SuppressWindow.Duration,
	}
}
