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

package launcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/private/config"
	"github.com/sstreaming/sstreaming/private/env"
)

type testConfig struct {
	General env.General `toml:"general,omitempty"`
	Logging log.Config  `toml:"log,omitempty"`
}

func (c *testConfig) InitDefaults() { config.InitAll(&c.General, &c.Logging) }

func (c *testConfig) Validate() error { return config.ValidateAll(&c.General, &c.Logging) }

func (c *testConfig) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.General, &c.Logging)
}

func TestApplicationRunsMain(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cfg.toml")
	raw := "[general]\nid = \"ctrl-test\"\n\n[log.console]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(file, []byte(raw), 0644))

	var cfg testConfig
	var called bool
	a := Application{
		TOMLConfig: &cfg,
		ShortName:  "test",
		Main: func(ctx context.Context) error {
			called = true
			return nil
		},
	}
	require.NoError(t, a.run([]string{"--config", file}))
	assert.True(t, called)
	assert.Equal(t, "ctrl-test", cfg.General.ID)
	assert.Equal(t, "debug", a.getLogging().Console.Level)
}

func TestApplicationRejectsInvalidConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(file, []byte("[general]\nunknown = 1\n"), 0644))
	a := Application{TOMLConfig: &testConfig{}}
	assert.Error(t, a.run([]string{"--config", file}))
}

func TestApplicationRequiresConfigFlag(t *testing.T) {
	a := Application{TOMLConfig: &testConfig{}}
	assert.Error(t, a.run(nil))
}
