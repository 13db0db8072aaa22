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

// Package addr contains the identifiers used throughout the controller:
// switch datapath ids, port numbers, MAC addresses and stream ids together
// with the derivation of a stream's multicast destination addresses.
package addr

import (
	"fmt"
	"hash/fnv"
	"net"
	"strconv"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// DPID is the datapath id of an OpenFlow switch.
type DPID uint64

func (d DPID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// ParseDPID parses a datapath id in decimal or 0x prefixed hex notation.
func ParseDPID(s string) (DPID, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, serrors.Wrap("parsing dpid", err, "raw", s)
	}
	return DPID(v), nil
}

// Port is a switch port number.
type Port uint32

func (p Port) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// MAC is an ethernet address. Unlike net.HardwareAddr it is comparable and
// can be used as a map key.
type MAC [6]byte

// Well-known MAC addresses.
var (
	// BroadcastMAC is the ethernet broadcast address.
	BroadcastMAC = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	// LLDPMAC is the nearest bridge LLDP destination used for link discovery.
	LLDPMAC = MAC{0x01, 0x80, 0xc2, 0x00, 0x00, 0x0e}
	// DiscoveryMAC is the source address of active host discovery probes.
	DiscoveryMAC = MAC{0xe0, 0xe1, 0xe2, 0xe3, 0xe4, 0xe5}
	// IPv6MulticastPrefix together with IPv6MulticastMask matches IPv6
	// neighbour and router discovery frames.
	IPv6MulticastPrefix = MAC{0x33, 0x33, 0x00, 0x00, 0x00, 0x00}
	// IPv6MulticastMask is the mask for IPv6MulticastPrefix.
	IPv6MulticastMask = MAC{0xff, 0xff, 0x00, 0x00, 0x00, 0x00}
)

// ParseMAC parses s in any format accepted by net.ParseMAC, as long as it
// denotes a 48 bit address.
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, serrors.Wrap("parsing mac", err, "raw", s)
	}
	return MACFrom(hw)
}

// MustParseMAC is like ParseMAC but panics on error.
func MustParseMAC(s string) MAC {
	m, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MACFrom converts a hardware address to a MAC.
func MACFrom(hw net.HardwareAddr) (MAC, error) {
	var m MAC
	if len(hw) != len(m) {
		return MAC{}, serrors.New("unsupported hardware address length", "len", len(hw))
	}
	copy(m[:], hw)
	return m, nil
}

// HardwareAddr returns m as a net.HardwareAddr.
func (m MAC) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(m[:])
}

// IsMulticast reports whether the group bit is set.
func (m MAC) IsMulticast() bool {
	return m[0]&0x01 != 0
}

// IsBroadcast reports whether m is the broadcast address.
func (m MAC) IsBroadcast() bool {
	return m == BroadcastMAC
}

func (m MAC) String() string {
	return m.HardwareAddr().String()
}

// MarshalText implements encoding.TextMarshaler.
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MAC) UnmarshalText(b []byte) error {
	v, err := ParseMAC(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// FlowID identifies a unicast flow. It is derived from the destination MAC
// and always fits in 30 bits.
type FlowID uint32

const flowIDMask = 1<<30 - 1

// FlowIDFor returns the flow id of unicast traffic towards dst.
func FlowIDFor(dst MAC) FlowID {
	h := fnv.New32a()
	_, _ = h.Write(dst[:])
	return FlowID(h.Sum32() & flowIDMask)
}

func (f FlowID) String() string {
	return fmt.Sprintf("%#08x", uint32(f))
}
