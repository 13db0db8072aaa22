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

package switching_test

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/flowsync/flowsynctest"
	"github.com/sstreaming/sstreaming/controller/hosts"
	"github.com/sstreaming/sstreaming/controller/multipath"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log/testlog"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/private/topology"
)

var (
	dstMAC = addr.MustParseMAC("00:00:00:00:00:44")
	frame  = []byte("frame")
)

func linkPort(n addr.DPID) addr.Port {
	return addr.Port(10 + n)
}

type env struct {
	ctx    context.Context
	graph  *topology.Graph
	driver *flowsynctest.Recorder
	hosts  *hosts.Registry
	flows  *metrics.TestGauge
	sw     *switching.Switching
}

// newEnv creates the diamond 1-{2,3}-4 with the destination host attached to
// port 1 of switch 4.
func newEnv(t *testing.T, cfg switching.Config) *env {
	t.Helper()
	e := &env{
		ctx:    testlog.Context(t),
		graph:  topology.New(),
		driver: &flowsynctest.Recorder{},
		hosts:  hosts.New(),
		flows:  metrics.NewTestGauge(),
	}
	for _, n := range []addr.DPID{1, 2, 3, 4} {
		e.graph.AddNode(n)
	}
	for _, l := range [][2]addr.DPID{{1, 2}, {1, 3}, {2, 4}, {3, 4}} {
		require.True(t, e.graph.AddEdge(l[0], linkPort(l[1]), l[1], linkPort(l[0])))
	}
	e.hosts.Learn(hosts.Host{
		MAC:  dstMAC,
		IP:   netip.MustParseAddr("10.0.0.4"),
		Node: 4,
		Port: 1,
	})
	s := &flowsync.Synchronizer{Driver: e.driver}
	e.sw = switching.New(e.graph, s, e.hosts, cfg, switching.Metrics{Flows: e.flows})
	return e
}

func (e *env) assertPorts(t *testing.T, expected map[addr.DPID][]addr.Port) {
	t.Helper()
	for _, n := range e.graph.Nodes() {
		assert.Equalf(t, expected[n], e.driver.Entry(n, dstMAC).Out, "node %s", n)
	}
}

func TestHandle(t *testing.T) {
	testCases := map[string]struct {
		Multipath bool
		Expected  map[addr.DPID][]addr.Port
	}{
		"multipath": {
			Multipath: true,
			Expected: map[addr.DPID][]addr.Port{
				1: {linkPort(2), linkPort(3)},
				2: {linkPort(4)},
				3: {linkPort(4)},
				4: {1},
			},
		},
		"single path": {
			Expected: map[addr.DPID][]addr.Port{
				1: {linkPort(2)},
				2: {linkPort(4)},
				4: {1},
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, switching.Config{Multipath: tc.Multipath})
			require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
			e.assertPorts(t, tc.Expected)

			reqs := e.driver.Requests()
			require.NotEmpty(t, reqs)
			last := reqs[len(reqs)-1]
			require.NotNil(t, last.PacketOut)
			assert.Equal(t, addr.DPID(4), last.Node)
			assert.Equal(t, []flowsync.Action{flowsync.Output(1)}, last.PacketOut.Actions)
			assert.Equal(t, frame, last.PacketOut.Data)

			flows := e.sw.Flows()
			require.Len(t, flows, 1)
			assert.Equal(t, addr.FlowIDFor(dstMAC), flows[0].ID)
			assert.Len(t, flows[0].Hops, len(tc.Expected))
			assert.Equal(t, float64(1), metrics.GaugeValue(e.flows))
		})
	}
}

func TestHandleGroupAtFork(t *testing.T) {
	e := newEnv(t, switching.Config{Multipath: true})
	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
	sw := e.driver.Switch(1)
	g, ok := sw.Groups[flowsync.UnicastGroupID(addr.FlowIDFor(dstMAC))]
	require.True(t, ok)
	assert.Equal(t, flowsync.GroupTypeSelect, g.Type)
	for _, n := range []addr.DPID{2, 3, 4} {
		assert.Empty(t, e.driver.Switch(n).Groups, "node %s", n)
	}
}

func TestHandleErrors(t *testing.T) {
	e := newEnv(t, switching.Config{})
	err := e.sw.Handle(e.ctx, 1, 2, addr.MustParseMAC("00:00:00:00:00:99"), frame)
	assert.ErrorIs(t, err, switching.ErrUnknownHost)
	assert.Empty(t, e.driver.Requests())

	e.graph.AddNode(5)
	e.hosts.Learn(hosts.Host{MAC: dstMAC, Node: 5, Port: 1})
	err = e.sw.Handle(e.ctx, 1, 2, dstMAC, frame)
	assert.ErrorIs(t, err, multipath.ErrUnreachable)
	assert.Empty(t, e.driver.Requests())
	assert.Empty(t, e.sw.Flows())
}

func TestHandleSuppressed(t *testing.T) {
	e := newEnv(t, switching.Config{Multipath: true, SuppressWindow: time.Hour})
	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
	e.driver.Reset()

	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
	reqs := e.driver.Requests()
	require.Len(t, reqs, 1)
	assert.NotNil(t, reqs[0].PacketOut)

	// A request from another switch refreshes the hop at that switch and
	// leaves the other hops in place.
	e.driver.Reset()
	require.NoError(t, e.sw.Handle(e.ctx, 2, linkPort(1), dstMAC, frame))
	reqs = e.driver.Requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs[:2] {
		assert.Equal(t, addr.DPID(2), r.Node)
		assert.NotNil(t, r.Flow)
	}
	assert.NotNil(t, reqs[2].PacketOut)
	e.assertPorts(t, map[addr.DPID][]addr.Port{
		1: {linkPort(2), linkPort(3)},
		2: {linkPort(4)},
		3: {linkPort(4)},
		4: {1},
	})
}

func TestHandleReinstallsExpiredFlow(t *testing.T) {
	testCases := map[string]struct {
		Multipath bool
		Expected  []addr.Port
	}{
		"single path": {Expected: []addr.Port{linkPort(2)}},
		"multipath":   {Multipath: true, Expected: []addr.Port{linkPort(2), linkPort(3)}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, switching.Config{
				Multipath:      tc.Multipath,
				SuppressWindow: time.Millisecond,
			})
			require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))

			// The switch drops the entry after the idle timeout, without the
			// controller being told.
			require.NoError(t, e.driver.FlowMod(1, flowsync.FlowMod{
				Command:  flowsync.Delete,
				Priority: flowsync.PriorityForward,
				Match:    flowsync.Match{EthDst: &dstMAC},
				OutPort:  flowsync.PortAny,
				OutGroup: flowsync.GroupAny,
			}))
			assert.Empty(t, e.driver.Entry(1, dstMAC).Out)
			e.driver.Reset()
			time.Sleep(5 * time.Millisecond)

			require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
			var adds int
			for _, r := range e.driver.Requests() {
				if r.Flow != nil && r.Flow.Command == flowsync.Add {
					assert.Equal(t, addr.DPID(1), r.Node)
					adds++
				}
			}
			assert.Equal(t, 1, adds)
			assert.Equal(t, tc.Expected, e.driver.Entry(1, dstMAC).Out)
			assert.Len(t, e.sw.Flows(), 1)
		})
	}
}

func TestHandleAtDestinationPort(t *testing.T) {
	e := newEnv(t, switching.Config{})
	require.NoError(t, e.sw.Handle(e.ctx, 4, 1, dstMAC, frame))
	for _, r := range e.driver.Requests() {
		assert.Nil(t, r.PacketOut)
	}
	e.assertPorts(t, map[addr.DPID][]addr.Port{4: {1}})
}

func TestLinksRemoved(t *testing.T) {
	e := newEnv(t, switching.Config{Multipath: true})
	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))

	// Unrelated links do not affect the flow.
	e.sw.LinksRemoved(e.ctx, topology.NewLinkKey(7, 8))
	assert.Len(t, e.sw.Flows(), 1)

	require.True(t, e.graph.RemoveEdge(2, 4))
	e.sw.LinksRemoved(e.ctx, topology.NewLinkKey(4, 2))
	e.assertPorts(t, map[addr.DPID][]addr.Port{})
	assert.Empty(t, e.sw.Flows())
	assert.Equal(t, float64(0), metrics.GaugeValue(e.flows))

	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
	e.assertPorts(t, map[addr.DPID][]addr.Port{
		1: {linkPort(3)},
		3: {linkPort(4)},
		4: {1},
	})
}

func TestSwitchLeft(t *testing.T) {
	testCases := map[string]struct {
		Node     addr.DPID
		Expected map[addr.DPID][]addr.Port
	}{
		"transit switch":     {Node: 3},
		"destination switch": {Node: 4},
		"unused switch": {
			Node:     5,
			Expected: map[addr.DPID][]addr.Port{1: {linkPort(2)}, 2: {linkPort(4)}, 4: {1}},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, switching.Config{Multipath: tc.Node != 5})
			e.graph.AddNode(5)
			require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))
			e.driver.Reset()

			links := e.graph.RemoveNode(tc.Node)
			lost := e.hosts.ForgetNode(tc.Node)
			e.sw.SwitchLeft(e.ctx, tc.Node, links, lost)
			for _, r := range e.driver.Requests() {
				assert.NotEqual(t, tc.Node, r.Node, "no requests to the removed switch")
			}
			e.assertPorts(t, tc.Expected)
		})
	}
}

func TestHostLost(t *testing.T) {
	e := newEnv(t, switching.Config{})
	require.NoError(t, e.sw.Handle(e.ctx, 1, 2, dstMAC, frame))

	e.sw.HostLost(e.ctx, hosts.Host{MAC: addr.MustParseMAC("00:00:00:00:00:99")})
	assert.Len(t, e.sw.Flows(), 1)

	h, ok := e.hosts.ByMAC(dstMAC)
	require.True(t, ok)
	e.sw.HostLost(e.ctx, h)
	assert.Empty(t, e.sw.Flows())
	e.assertPorts(t, map[addr.DPID][]addr.Port{})
}
