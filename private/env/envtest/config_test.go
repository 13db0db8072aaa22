// Copyright 2019 Anapaya Systems
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

package envtest

import (
	"bytes"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"

	"github.com/sstreaming/sstreaming/private/config"
	"github.com/sstreaming/sstreaming/private/env"
)

func TestGeneralSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.General
	cfg.Sample(&sample, nil, map[string]string{config.ID: "general"})
	InitTestGeneral(&cfg)
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	assert.NoError(t, err)
	CheckTestGeneral(t, &cfg, "general")
	assert.NoError(t, cfg.Validate())
}

func TestGeneralValidate(t *testing.T) {
	testCases := map[string]struct {
		General   env.General
		AssertErr assert.ErrorAssertionFunc
	}{
		"missing id": {
			AssertErr: assert.Error,
		},
		"valid": {
			General:   env.General{ID: "ctrl-1"},
			AssertErr: assert.NoError,
		},
		"config dir is temp dir": {
			General:   env.General{ID: "ctrl-1", ConfigDir: t.TempDir()},
			AssertErr: assert.NoError,
		},
		"config dir missing": {
			General:   env.General{ID: "ctrl-1", ConfigDir: "/does/not/exist"},
			AssertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tc.AssertErr(t, tc.General.Validate())
		})
	}
}

func TestMetricsSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.Metrics
	cfg.Sample(&sample, nil, nil)
	InitTestMetrics(&cfg)
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	assert.NoError(t, err)
	CheckTestMetrics(t, &cfg)
}
