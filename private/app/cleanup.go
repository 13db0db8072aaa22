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

// Package app contains helpers shared by the binaries.
package app

import (
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// Cleanup collects functions that release resources on shutdown.
type Cleanup struct {
	functions []func() error
}

// Add registers f to be run by Do.
func (c *Cleanup) Add(f func() error) {
	c.functions = append(c.functions, f)
}

// Do runs all registered functions in reverse registration order. All
// functions run even if some fail; the failures are returned as one error.
func (c *Cleanup) Do() error {
	var errs serrors.List
	for i := len(c.functions) - 1; i >= 0; i-- {
		if err := c.functions[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.ToError()
}
