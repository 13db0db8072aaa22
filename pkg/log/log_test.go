// Copyright 2018 ETH Zurich
// Copyright 2019 ETH Zurich, Anapaya Systems
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

package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/log/testlog"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/private/config"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg log.Config
	config.WriteSample(&sample, nil, nil, &cfg)

	var parsed struct {
		Log log.Config `toml:"log"`
	}
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().
		Decode(&parsed)
	require.NoError(t, err)
	assert.Equal(t, log.DefaultConsoleLevel, parsed.Log.Console.Level)
	assert.Equal(t, "human", parsed.Log.Console.Format)
	assert.NoError(t, parsed.Log.Validate())
}

func TestConsoleConfigValidate(t *testing.T) {
	testCases := map[string]struct {
		Config    log.ConsoleConfig
		AssertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			AssertErr: assert.NoError,
		},
		"json debug": {
			Config:    log.ConsoleConfig{Level: "debug", Format: "json"},
			AssertErr: assert.NoError,
		},
		"invalid level": {
			Config:    log.ConsoleConfig{Level: "loud"},
			AssertErr: assert.Error,
		},
		"invalid format": {
			Config:    log.ConsoleConfig{Format: "xml"},
			AssertErr: assert.Error,
		},
		"invalid stacktrace level": {
			Config:    log.ConsoleConfig{StacktraceLevel: "sometimes"},
			AssertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tc.Config.InitDefaults()
			tc.AssertErr(t, tc.Config.Validate())
		})
	}
}

func TestSetupWithEntriesCounter(t *testing.T) {
	info := metrics.NewTestCounter()
	errs := metrics.NewTestCounter()
	err := log.Setup(
		log.Config{Console: log.ConsoleConfig{Level: "info"}},
		log.WithEntriesCounter(log.EntriesCounter{Info: info, Error: errs}),
	)
	require.NoError(t, err)
	defer log.Discard()

	log.Info("hello", "key", "value")
	log.Debug("not emitted")
	log.Error("failure")
	assert.Equal(t, float64(1), metrics.CounterValue(info))
	assert.Equal(t, float64(1), metrics.CounterValue(errs))
}

func TestFromCtx(t *testing.T) {
	t.Run("no logger falls back to root", func(t *testing.T) {
		assert.NotNil(t, log.FromCtx(context.Background()))
	})
	t.Run("logger is recovered", func(t *testing.T) {
		l := testlog.NewLogger(t)
		ctx := log.CtxWith(context.Background(), l)
		assert.Equal(t, l, log.FromCtx(ctx))
	})
	t.Run("with labels", func(t *testing.T) {
		ctx, l := log.WithLabels(testlog.Context(t), "stream", 7)
		assert.Equal(t, l, log.FromCtx(ctx))
	})
}
