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

package ofdriver

import (
	"testing"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

func TestLLDPRoundTrip(t *testing.T) {
	frame, err := lldpFrame(0x1122334455667788, 42)
	require.NoError(t, err)
	node, port, ok := parseLLDP(frame)
	require.True(t, ok)
	assert.Equal(t, addr.DPID(0x1122334455667788), node)
	assert.Equal(t, addr.Port(42), port)
}

func TestParseLLDPForeign(t *testing.T) {
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		&layers.Ethernet{
			SrcMAC:       addr.MustParseMAC("00:00:00:00:00:01").HardwareAddr(),
			DstMAC:       addr.LLDPMAC.HardwareAddr(),
			EthernetType: layers.EthernetTypeLinkLayerDiscovery,
		},
		&layers.LinkLayerDiscovery{
			ChassisID: layers.LLDPChassisID{
				Subtype: layers.LLDPChassisIDSubTypeMACAddr,
				ID:      []byte{0, 0, 0, 0, 0, 1},
			},
			PortID: layers.LLDPPortID{
				Subtype: layers.LLDPPortIDSubtypeIfaceName,
				ID:      []byte("eth0"),
			},
			TTL: 120,
		},
	)
	require.NoError(t, err)
	testCases := map[string][]byte{
		"host LLDP": buf.Bytes(),
		"not LLDP":  {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 1, 0x08, 0x06},
		"garbage":   {1, 2, 3},
	}
	for name, frame := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, ok := parseLLDP(frame)
			assert.False(t, ok)
		})
	}
}

func TestLinkTracker(t *testing.T) {
	l12 := topology.Link{Src: 1, SrcPort: 12, Dst: 2, DstPort: 11}
	l21 := l12.Reverse()
	l13 := topology.Link{Src: 1, SrcPort: 13, Dst: 3, DstPort: 11}
	now := time.Now()

	t.Run("observe reports new links", func(t *testing.T) {
		tr := newLinkTracker()
		assert.True(t, tr.observe(l12, now))
		assert.False(t, tr.observe(l12, now.Add(time.Second)))
		assert.True(t, tr.observe(l21, now))
	})
	t.Run("expire", func(t *testing.T) {
		tr := newLinkTracker()
		tr.observe(l12, now)
		tr.observe(l21, now.Add(2*time.Second))
		assert.Equal(t, []topology.Link{l12}, tr.expire(now.Add(time.Second)))
		assert.Empty(t, tr.expire(now.Add(time.Second)))
		assert.True(t, tr.observe(l12, now.Add(3*time.Second)))
		// The live reverse direction was dropped with the expired one.
		assert.True(t, tr.observe(l21, now.Add(3*time.Second)))
	})
	t.Run("forget port", func(t *testing.T) {
		tr := newLinkTracker()
		tr.observe(l12, now)
		tr.observe(l21, now)
		tr.observe(l13, now)
		tr.forgetPort(2, 11)
		assert.True(t, tr.observe(l12, now))
		assert.True(t, tr.observe(l21, now))
		assert.False(t, tr.observe(l13, now))
	})
	t.Run("forget node", func(t *testing.T) {
		tr := newLinkTracker()
		tr.observe(l12, now)
		tr.observe(l13, now)
		tr.forgetNode(3)
		assert.False(t, tr.observe(l12, now))
		assert.True(t, tr.observe(l13, now))
	})
}
