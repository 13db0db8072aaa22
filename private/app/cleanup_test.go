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

package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/app"
)

func TestCleanup(t *testing.T) {
	var order []int
	boom := serrors.New("boom")
	var c app.Cleanup
	c.Add(func() error { order = append(order, 1); return nil })
	c.Add(func() error { order = append(order, 2); return boom })
	c.Add(func() error { order = append(order, 3); return nil })

	err := c.Do()
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.ErrorContains(t, err, "boom")

	var empty app.Cleanup
	assert.NoError(t, empty.Do())
}
