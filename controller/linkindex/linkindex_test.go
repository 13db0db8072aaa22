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

package linkindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sstreaming/sstreaming/controller/linkindex"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

func TestIndex(t *testing.T) {
	l12 := topology.NewLinkKey(1, 2)
	l23 := topology.NewLinkKey(3, 2)
	l24 := topology.NewLinkKey(2, 4)

	x := linkindex.New[addr.StreamID]()
	x.Set(7, []topology.LinkKey{l23, l12})
	x.Set(3, []topology.LinkKey{l12, l24})
	assert.Equal(t, 2, x.Len())

	assert.Equal(t, []addr.StreamID{3, 7}, x.Users(l12))
	assert.Equal(t, []addr.StreamID{7}, x.Users(l23))
	assert.Equal(t, []addr.StreamID{3, 7}, x.Users(l23, l24))
	assert.Empty(t, x.Users(topology.NewLinkKey(4, 5)))
	assert.Equal(t, []topology.LinkKey{l12, l23}, x.Links(7))

	x.Set(7, []topology.LinkKey{l24})
	assert.Equal(t, []addr.StreamID{3}, x.Users(l12))
	assert.Equal(t, []addr.StreamID{3, 7}, x.Users(l24))

	x.Remove(3)
	x.Remove(42)
	assert.Empty(t, x.Users(l12))
	assert.Equal(t, 1, x.Len())

	x.Set(7, nil)
	assert.Equal(t, 0, x.Len())
	assert.Empty(t, x.Users(l24))
}

func TestIndexAdd(t *testing.T) {
	x := linkindex.New[addr.FlowID]()
	x.Add(9, topology.NewLinkKey(1, 2))
	x.Add(9, topology.NewLinkKey(2, 3))
	x.Add(9, topology.NewLinkKey(2, 1))
	assert.Len(t, x.Links(9), 2)
	assert.Equal(t, []addr.FlowID{9}, x.Users(topology.NewLinkKey(3, 2)))
}
