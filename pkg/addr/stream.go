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

package addr

import (
	"net/netip"
	"strconv"
)

// StreamID identifies a multicast stream.
type StreamID uint16

func (s StreamID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// ParseStreamID parses a decimal stream id.
func ParseStreamID(s string) (StreamID, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return StreamID(v), nil
}

// StreamPrefix is the IPv4 network all stream destinations are taken from.
var StreamPrefix = netip.MustParsePrefix("225.1.0.0/16")

// MAC returns the multicast destination MAC of the stream,
// 01:00:5e:01:<hi>:<lo>.
func (s StreamID) MAC() MAC {
	return MAC{0x01, 0x00, 0x5e, 0x01, byte(s >> 8), byte(s)}
}

// IP returns the multicast destination IPv4 address of the stream,
// 225.1.<hi>.<lo>.
func (s StreamID) IP() netip.Addr {
	p := StreamPrefix.Addr().As4()
	return netip.AddrFrom4([4]byte{p[0], p[1], byte(s >> 8), byte(s)})
}

// IsStreaming reports whether ip is a stream destination address.
func IsStreaming(ip netip.Addr) bool {
	return ip.Is4() && StreamPrefix.Contains(ip)
}

// StreamIDFromIP extracts the stream id from a stream destination address.
// The second return value is false if ip is not a stream address.
func StreamIDFromIP(ip netip.Addr) (StreamID, bool) {
	if !IsStreaming(ip) {
		return 0, false
	}
	b := ip.As4()
	return StreamID(uint16(b[2])<<8 | uint16(b[3])), true
}
