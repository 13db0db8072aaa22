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

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller/ofdriver"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/private/util"
	libconfig "github.com/sstreaming/sstreaming/private/config"
	"github.com/sstreaming/sstreaming/private/env/envtest"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg Config
	cfg.Sample(&sample, nil, nil)

	InitTestConfig(&cfg)
	require.NoError(t, libconfig.Decode(sample.Bytes(), &cfg))
	CheckTestConfig(t, &cfg, idSample)

	cfg.InitDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	cfg := Config{}
	cfg.General.ID = "ctrl"
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ofdriver.DefaultListenAddr, cfg.OpenFlow.ListenAddr)
	assert.Equal(t, switching.Config{
		Multipath:      true,
		IdleTimeout:    switching.DefaultIdleTimeout,
		SuppressWindow: switching.DefaultSuppressWindow,
	}, cfg.State().Switching)
	assert.Equal(t, uint32(1000), cfg.State().DefaultRate)
}

func TestValidate(t *testing.T) {
	testCases := map[string]struct {
		Modify func(cfg *Config)
	}{
		"missing id": {
			Modify: func(cfg *Config) { cfg.General.ID = "" },
		},
		"invalid api addr": {
			Modify: func(cfg *Config) { cfg.API.Addr = "localhost" },
		},
		"invalid openflow addr": {
			Modify: func(cfg *Config) { cfg.OpenFlow.ListenAddr = "6653" },
		},
		"idle timeout too large": {
			Modify: func(cfg *Config) {
				cfg.Switching.IdleTimeout = util.DurWrap{Duration: 20 * time.Hour}
			},
		},
		"idle timeout below a second": {
			Modify: func(cfg *Config) {
				cfg.Switching.IdleTimeout = util.DurWrap{Duration: time.Millisecond}
			},
		},
		"negative suppress window": {
			Modify: func(cfg *Config) {
				cfg.Switching.SuppressWindow = util.DurWrap{Duration: -time.Second}
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := Config{}
			cfg.General.ID = "ctrl"
			cfg.InitDefaults()
			tc.Modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func InitTestConfig(cfg *Config) {
	envtest.InitTestGeneral(&cfg.General)
	envtest.InitTestMetrics(&cfg.Metrics)
	cfg.API.Addr = "invalid"
	cfg.OpenFlow.ListenAddr = "invalid"
	cfg.OpenFlow.SendQueue = 3
	cfg.Streaming.DefaultRate = 3
	cfg.Switching.DisableMultipath = true
}

func CheckTestConfig(t *testing.T, cfg *Config, id string) {
	envtest.CheckTestGeneral(t, &cfg.General, id)
	envtest.CheckTestMetrics(t, &cfg.Metrics)
	assert.Equal(t, "info", cfg.Logging.Console.Level)
	assert.Empty(t, cfg.API.Addr)
	assert.Equal(t, ofdriver.DefaultListenAddr, cfg.OpenFlow.ListenAddr)
	assert.Equal(t, ofdriver.DefaultEchoInterval, cfg.OpenFlow.EchoInterval.Duration)
	assert.Equal(t, ofdriver.DefaultLLDPInterval, cfg.OpenFlow.LLDPInterval.Duration)
	assert.Equal(t, ofdriver.DefaultHandshakeTimeout, cfg.OpenFlow.HandshakeTimeout.Duration)
	assert.Equal(t, ofdriver.DefaultSendQueue, cfg.OpenFlow.SendQueue)
	assert.Equal(t, uint32(1000), cfg.Streaming.DefaultRate)
	assert.False(t, cfg.Switching.DisableMultipath)
	assert.Equal(t, switching.DefaultIdleTimeout, cfg.Switching.IdleTimeout.Duration)
	assert.Equal(t, switching.DefaultSuppressWindow, cfg.Switching.SuppressWindow.Duration)
}
