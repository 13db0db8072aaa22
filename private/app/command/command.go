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

// Package command contains cobra sub commands shared by the binaries.
package command

import (
	"github.com/spf13/cobra"

	"github.com/sstreaming/sstreaming/private/config"
)

// Pather returns the command path of the parent command. It is used to
// render usage examples.
type Pather interface {
	CommandPath() string
}

// NewSample creates the "sample" command. Concrete samples are added as
// sub commands.
func NewSample(pather Pather, cmds ...func(Pather) *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample files",
		Args:  cobra.NoArgs,
	}
	for _, f := range cmds {
		cmd.AddCommand(f(cmd))
	}
	return cmd
}

// NewSampleConfig creates a command that prints a commented sample of the
// TOML configuration read by the binary.
func NewSampleConfig(sampler config.Sampler, ctx config.CtxMap) func(Pather) *cobra.Command {
	return func(pather Pather) *cobra.Command {
		return &cobra.Command{
			Use:     "config",
			Short:   "Display sample configuration file",
			Example: "  " + pather.CommandPath() + " config > controller.toml",
			Args:    cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				sampler.Sample(cmd.OutOrStdout(), nil, ctx)
			},
		}
	}
}
