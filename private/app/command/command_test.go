// Copyright 2023 Anapaya Systems
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

package command_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/private/app/command"
	"github.com/sstreaming/sstreaming/private/config"
)

type stringSampler string

func (s stringSampler) Sample(dst io.Writer, _ config.Path, ctx config.CtxMap) {
	config.WriteString(dst, string(s)+ctx[config.ID])
}

func TestSampleConfig(t *testing.T) {
	root := &cobra.Command{Use: "controller"}
	root.AddCommand(command.NewSample(root,
		command.NewSampleConfig(stringSampler("id = "), config.CtxMap{config.ID: "ctrl"}),
	))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sample", "config"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "id = ctrl", out.String())
}

func TestGendocs(t *testing.T) {
	root := &cobra.Command{Use: "controller", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(command.NewGendocs(root))
	dir := t.TempDir()
	root.SetArgs([]string{"gendocs", dir})
	require.NoError(t, root.Execute())
	_, err := os.Stat(filepath.Join(dir, "controller.md"))
	assert.NoError(t, err)
}
