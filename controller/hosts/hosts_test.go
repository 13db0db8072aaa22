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

package hosts_test

import (
	"context"
	"net/netip"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/hosts"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

var (
	macA = addr.MustParseMAC("00:00:00:00:00:0a")
	macB = addr.MustParseMAC("00:00:00:00:00:0b")
	ipA  = netip.MustParseAddr("10.0.0.10")
)

func TestLearn(t *testing.T) {
	r := hosts.New()
	assert.True(t, r.Learn(hosts.Host{MAC: macA, IP: ipA, Node: 1, Port: 1}))
	assert.False(t, r.Learn(hosts.Host{MAC: macA, IP: ipA, Node: 1, Port: 1}))
	// Frames without IP keep the address.
	assert.False(t, r.Learn(hosts.Host{MAC: macA, Node: 1, Port: 1}))
	h, ok := r.ByMAC(macA)
	require.True(t, ok)
	assert.Equal(t, ipA, h.IP)

	info, ok := r.HostAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, flowsync.HostInfo{MAC: macA, IP: ipA}, info)

	t.Run("move", func(t *testing.T) {
		assert.True(t, r.Learn(hosts.Host{MAC: macA, Node: 2, Port: 3}))
		_, ok := r.At(1, 1)
		assert.False(t, ok)
		h, ok := r.At(2, 3)
		require.True(t, ok)
		assert.Equal(t, hosts.Host{MAC: macA, IP: ipA, Node: 2, Port: 3}, h)
	})
	t.Run("replace host on port", func(t *testing.T) {
		assert.True(t, r.Learn(hosts.Host{MAC: macB, Node: 2, Port: 3}))
		_, ok := r.ByMAC(macA)
		assert.False(t, ok)
		assert.Equal(t, 1, r.Len())
	})
}

func TestForget(t *testing.T) {
	r := hosts.New()
	r.Learn(hosts.Host{MAC: macA, Node: 1, Port: 2})
	r.Learn(hosts.Host{MAC: macB, Node: 1, Port: 1})
	r.Learn(hosts.Host{MAC: addr.MustParseMAC("00:00:00:00:00:0c"), Node: 2, Port: 1})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, macB, all[0].MAC)
	assert.Equal(t, macA, all[1].MAC)

	removed := r.ForgetNode(1)
	assert.Equal(t, []hosts.Host{
		{MAC: macB, Node: 1, Port: 1},
		{MAC: macA, Node: 1, Port: 2},
	}, removed)
	assert.Equal(t, 1, r.Len())

	h, ok := r.ForgetPort(2, 1)
	assert.True(t, ok)
	assert.Equal(t, addr.DPID(2), h.Node)
	_, ok = r.ForgetPort(2, 1)
	assert.False(t, ok)
	assert.Empty(t, r.All())
}

func TestProbeFrame(t *testing.T) {
	raw, err := hosts.ProbeFrame(3)
	require.NoError(t, err)
	pkt := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	require.Nil(t, pkt.ErrorLayer())

	eth := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	assert.Equal(t, addr.DiscoveryMAC.HardwareAddr(), eth.SrcMAC)
	assert.Equal(t, addr.BroadcastMAC.HardwareAddr(), eth.DstMAC)
	ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	assert.Equal(t, "172.18.255.254", ip.SrcIP.String())
	assert.Equal(t, "172.18.255.255", ip.DstIP.String())
	icmp := pkt.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	assert.Equal(t, uint8(layers.ICMPv4TypeEchoRequest), icmp.TypeCode.Type())
	assert.Equal(t, uint16(3), icmp.Seq)
}

type sent struct {
	node addr.DPID
	port addr.Port
}

type fakeSender struct {
	sent []sent
}

func (s *fakeSender) PacketOut(_ context.Context, node addr.DPID, port addr.Port, _ []byte) {
	s.sent = append(s.sent, sent{node: node, port: port})
}

func TestDiscover(t *testing.T) {
	g := topology.New()
	g.AddNode(1, 1, 2, 3)
	g.AddNode(2, 1, 2)
	g.AddEdge(1, 3, 2, 1)
	s := &fakeSender{}
	d := &hosts.Discoverer{Topology: g, Sender: s}
	n, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []sent{{1, 1}, {1, 2}, {2, 2}}, s.sent)
}
