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
	"bytes"
	"encoding/binary"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
)

const (
	typeFeaturesRequest = 5
	typePacketOut       = 13
	typeFlowMod         = 14
	typeGroupMod        = 15
)

func checkHeader(t *testing.T, b []byte, typ uint8) {
	t.Helper()
	h, err := parseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint8(version13), h.Version)
	assert.Equal(t, typ, h.Type)
	assert.Equal(t, len(b), int(h.Length))
}

func TestEncodeFlowMod(t *testing.T) {
	mac := addr.MustParseMAC("01:00:5e:00:00:07")
	t.Run("add with meter", func(t *testing.T) {
		b, err := encodeFlowMod(flowsync.FlowMod{
			Command:     flowsync.Add,
			Priority:    20,
			Match:       flowsync.Match{InPort: 1, EthDst: &mac},
			Actions:     []flowsync.Action{flowsync.Group(7), flowsync.SetEthDst(mac)},
			Meter:       7,
			IdleTimeout: 30,
		})
		require.NoError(t, err)
		checkHeader(t, b, typeFlowMod)
		assert.Equal(t, uint8(0), b[25], "command")
		assert.Equal(t, uint16(30), binary.BigEndian.Uint16(b[26:28]), "idle timeout")
		assert.Equal(t, uint16(20), binary.BigEndian.Uint16(b[30:32]), "priority")
		meter := b[len(b)-8:]
		assert.Equal(t, uint16(instrTypeMeter), binary.BigEndian.Uint16(meter[0:2]))
		assert.Equal(t, uint32(7), binary.BigEndian.Uint32(meter[4:8]))
		assert.True(t, bytes.Contains(b, mac[:]))
	})
	t.Run("delete restricted to port", func(t *testing.T) {
		b, err := encodeFlowMod(flowsync.FlowMod{
			Command:  flowsync.Delete,
			Match:    flowsync.Match{EthDst: &mac},
			Meter:    7,
			OutPort:  3,
			OutGroup: flowsync.GroupAny,
		})
		require.NoError(t, err)
		checkHeader(t, b, typeFlowMod)
		assert.Equal(t, uint8(3), b[25], "command")
		assert.Equal(t, uint32(3), binary.BigEndian.Uint32(b[36:40]), "out port")
		assert.Equal(t, flowsync.GroupAny, binary.BigEndian.Uint32(b[40:44]), "out group")
		assert.NotEqual(t, uint16(instrTypeMeter),
			binary.BigEndian.Uint16(b[len(b)-8:len(b)-6]))
	})
	t.Run("invalid action", func(t *testing.T) {
		_, err := encodeFlowMod(flowsync.FlowMod{
			Command: flowsync.Add,
			Actions: []flowsync.Action{flowsync.SetIPv4Dst(netip.MustParseAddr("ff02::1"))},
		})
		assert.Error(t, err)
	})
}

func TestEncodeGroupMod(t *testing.T) {
	b, err := encodeGroupMod(flowsync.GroupMod{
		Command: flowsync.Add,
		Type:    flowsync.GroupTypeSelect,
		GroupID: 9,
		Buckets: []flowsync.Bucket{
			{Weight: 3, Actions: []flowsync.Action{flowsync.Output(1)}},
			{Weight: 1, Actions: []flowsync.Action{flowsync.Output(2)}},
		},
	})
	require.NoError(t, err)
	checkHeader(t, b, typeGroupMod)
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(b[8:10]), "command")
	assert.Equal(t, uint8(1), b[10], "type")
	assert.Equal(t, uint32(9), binary.BigEndian.Uint32(b[12:16]), "group id")
	assert.Equal(t, uint16(3), binary.BigEndian.Uint16(b[18:20]), "first bucket weight")

	b, err = encodeGroupMod(flowsync.GroupMod{
		Command: flowsync.Delete,
		Type:    flowsync.GroupTypeAll,
		GroupID: flowsync.GroupIDAll,
	})
	require.NoError(t, err)
	checkHeader(t, b, typeGroupMod)
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(b[8:10]), "command")
	assert.Equal(t, flowsync.GroupIDAll, binary.BigEndian.Uint32(b[12:16]))
}

func TestEncodeMeterMod(t *testing.T) {
	testCases := map[string]struct {
		Mod  flowsync.MeterMod
		Want []byte
	}{
		"add": {
			Mod: flowsync.MeterMod{Command: flowsync.Add, MeterID: 5, RateKbps: 1000},
			Want: []byte{
				4, 29, 0, 32, 0, 0, 0, 0,
				0, 0, 0, 5, 0, 0, 0, 5,
				0, 1, 0, 16, 0, 0, 0x03, 0xe8,
				0, 0, 0x03, 0xe8, 0, 0, 0, 0,
			},
		},
		"delete all": {
			Mod: flowsync.MeterMod{Command: flowsync.Delete, MeterID: flowsync.MeterIDAll},
			Want: []byte{
				4, 29, 0, 16, 0, 0, 0, 0,
				0, 2, 0, 5, 0xff, 0xff, 0xff, 0xff,
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			b, err := encodeMeterMod(tc.Mod)
			require.NoError(t, err)
			assert.Equal(t, tc.Want, b)
		})
	}
}

func TestEncodePacketOut(t *testing.T) {
	frame := []byte{1, 2, 3, 4, 5}
	b, err := encodePacketOut(flowsync.PacketOut{
		InPort:  flowsync.PortController,
		Actions: []flowsync.Action{flowsync.Output(4)},
		Data:    frame,
	})
	require.NoError(t, err)
	checkHeader(t, b, typePacketOut)
	assert.Equal(t, uint32(flowsync.PortController), binary.BigEndian.Uint32(b[12:16]))
	assert.True(t, bytes.HasSuffix(b, frame))
}
