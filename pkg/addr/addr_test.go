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

package addr_test

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

func TestStreamAddresses(t *testing.T) {
	testCases := map[string]struct {
		ID  addr.StreamID
		MAC string
		IP  string
	}{
		"zero":     {ID: 0, MAC: "01:00:5e:01:00:00", IP: "225.1.0.0"},
		"seven":    {ID: 7, MAC: "01:00:5e:01:00:07", IP: "225.1.0.7"},
		"high":     {ID: 258, MAC: "01:00:5e:01:01:02", IP: "225.1.1.2"},
		"max":      {ID: 65535, MAC: "01:00:5e:01:ff:ff", IP: "225.1.255.255"},
		"mid byte": {ID: 0x1234, MAC: "01:00:5e:01:12:34", IP: "225.1.18.52"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.MAC, tc.ID.MAC().String())
			assert.Equal(t, tc.IP, tc.ID.IP().String())
			assert.True(t, tc.ID.MAC().IsMulticast())

			id, ok := addr.StreamIDFromIP(tc.ID.IP())
			require.True(t, ok)
			assert.Equal(t, tc.ID, id)
		})
	}
}

func TestIsStreaming(t *testing.T) {
	testCases := map[string]struct {
		IP       string
		Expected bool
	}{
		"stream":          {IP: "225.1.3.4", Expected: true},
		"other multicast": {IP: "224.1.3.4", Expected: false},
		"neighbour /16":   {IP: "225.2.0.1", Expected: false},
		"unicast":         {IP: "10.0.0.1", Expected: false},
		"ipv6":            {IP: "ff02::1", Expected: false},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ip := netip.MustParseAddr(tc.IP)
			assert.Equal(t, tc.Expected, addr.IsStreaming(ip))
			_, ok := addr.StreamIDFromIP(ip)
			assert.Equal(t, tc.Expected, ok)
		})
	}
}

func TestMAC(t *testing.T) {
	m, err := addr.ParseMAC("00:00:00:00:00:01")
	require.NoError(t, err)
	assert.False(t, m.IsMulticast())
	assert.True(t, addr.BroadcastMAC.IsBroadcast())
	assert.True(t, addr.LLDPMAC.IsMulticast())

	_, err = addr.ParseMAC("00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01")
	assert.Error(t, err)

	raw, err := json.Marshal(struct{ M addr.MAC }{M: m})
	require.NoError(t, err)
	assert.JSONEq(t, `{"M":"00:00:00:00:00:01"}`, string(raw))
}

func TestFlowIDFor(t *testing.T) {
	a := addr.FlowIDFor(addr.MustParseMAC("00:00:00:00:00:01"))
	b := addr.FlowIDFor(addr.MustParseMAC("00:00:00:00:00:02"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, addr.FlowIDFor(addr.MustParseMAC("00:00:00:00:00:01")))
	assert.Zero(t, uint32(a)>>30)
	assert.Zero(t, uint32(b)>>30)
}

func TestParseDPID(t *testing.T) {
	d, err := addr.ParseDPID("0x10")
	require.NoError(t, err)
	assert.Equal(t, addr.DPID(16), d)
	_, err = addr.ParseDPID("switch")
	assert.Error(t, err)
}
