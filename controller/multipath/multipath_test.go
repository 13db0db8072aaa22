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

package multipath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller/multipath"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

func newGraph(t *testing.T) *topology.Graph {
	t.Helper()
	g := topology.New()
	for n := addr.DPID(1); n <= 6; n++ {
		g.AddNode(n)
	}
	// Diamond 1-{2,3}-4 followed by 5. 6 is isolated.
	for _, e := range [][2]addr.DPID{{1, 2}, {1, 3}, {2, 4}, {3, 4}, {4, 5}} {
		require.True(t, g.AddEdge(e[0], addr.Port(10+e[1]), e[1], addr.Port(10+e[0])))
	}
	return g
}

func TestCompute(t *testing.T) {
	testCases := map[string]struct {
		Src, Dst      addr.DPID
		Opts          []multipath.Option
		ExpectedPaths [][]addr.DPID
		ExpectedHops  map[addr.DPID][]addr.Port
		ExpectedErr   error
	}{
		"equal cost paths": {
			Src:           1,
			Dst:           5,
			ExpectedPaths: [][]addr.DPID{{1, 2, 4, 5}, {1, 3, 4, 5}},
			ExpectedHops: map[addr.DPID][]addr.Port{
				1: {12, 13},
				2: {14},
				3: {14},
				4: {15},
			},
		},
		"reverse direction": {
			Src:           5,
			Dst:           1,
			ExpectedPaths: [][]addr.DPID{{5, 4, 2, 1}, {5, 4, 3, 1}},
			ExpectedHops: map[addr.DPID][]addr.Port{
				5: {14},
				4: {12, 13},
				2: {11},
				3: {11},
			},
		},
		"single path mode": {
			Src:           1,
			Dst:           5,
			Opts:          []multipath.Option{multipath.WithSinglePath(true)},
			ExpectedPaths: [][]addr.DPID{{1, 2, 4, 5}},
			ExpectedHops: map[addr.DPID][]addr.Port{
				1: {12},
				2: {14},
				4: {15},
			},
		},
		"neighbours": {
			Src:           4,
			Dst:           5,
			ExpectedPaths: [][]addr.DPID{{4, 5}},
			ExpectedHops:  map[addr.DPID][]addr.Port{4: {15}},
		},
		"same switch": {
			Src:           3,
			Dst:           3,
			ExpectedPaths: [][]addr.DPID{{3}},
			ExpectedHops:  map[addr.DPID][]addr.Port{},
		},
		"unreachable": {
			Src:         1,
			Dst:         6,
			ExpectedErr: multipath.ErrUnreachable,
		},
		"unknown switch": {
			Src:         1,
			Dst:         9,
			ExpectedErr: multipath.ErrUnreachable,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			res, err := multipath.Compute(tc.Src, tc.Dst, newGraph(t), tc.Opts...)
			if tc.ExpectedErr != nil {
				assert.ErrorIs(t, err, tc.ExpectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ExpectedPaths, res.Paths)
			assert.Equal(t, tc.ExpectedHops, res.Hops)
		})
	}
}
