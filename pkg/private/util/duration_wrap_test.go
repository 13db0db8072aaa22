// Copyright 2018 Anapaya Systems
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

package util_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/pkg/private/util"
)

func TestDurWrapTOML(t *testing.T) {
	var cfg struct {
		Interval util.DurWrap `toml:"interval"`
	}
	require.NoError(t, toml.Unmarshal([]byte(`interval = "1.5s"`), &cfg))
	assert.Equal(t, 1500*time.Millisecond, cfg.Interval.Duration)

	raw, err := toml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `'1.5s'`)

	assert.Error(t, toml.Unmarshal([]byte(`interval = "soon"`), &cfg))
}
