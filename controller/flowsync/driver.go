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

package flowsync

import (
	"fmt"
	"net/netip"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Driver sends forwarding state mutations to a switch. Implementations must
// not block on the switch; errors only report that the request could not be
// handed to the switch connection.
type Driver interface {
	FlowMod(dpid addr.DPID, m FlowMod) error
	GroupMod(dpid addr.DPID, m GroupMod) error
	MeterMod(dpid addr.DPID, m MeterMod) error
	PacketOut(dpid addr.DPID, p PacketOut) error
}

// Wildcard and reserved identifiers, numerically identical to OpenFlow 1.3.
const (
	PortAny        addr.Port = 0xffffffff
	PortController addr.Port = 0xfffffffd
	GroupAny       uint32    = 0xffffffff
	GroupIDAll     uint32    = 0xfffffffc
	MeterIDAll     uint32    = 0xffffffff
)

// Command is the modification command of a request.
type Command uint8

const (
	Add Command = iota
	Delete
)

func (c Command) String() string {
	switch c {
	case Add:
		return "add"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

// ActionKind is the kind of an Action.
type ActionKind uint8

const (
	ActionOutput ActionKind = iota
	ActionGroup
	ActionSetEthDst
	ActionSetIPv4Dst
)

// Action is a single packet action. Only the field matching Kind is
// meaningful.
type Action struct {
	Kind  ActionKind
	Port  addr.Port
	Group uint32
	MAC   addr.MAC
	IP    netip.Addr
}

// Output returns an action that sends the packet out of port p.
func Output(p addr.Port) Action {
	return Action{Kind: ActionOutput, Port: p}
}

// Group returns an action that hands the packet to group g.
func Group(g uint32) Action {
	return Action{Kind: ActionGroup, Group: g}
}

// SetEthDst returns an action that rewrites the destination MAC.
func SetEthDst(m addr.MAC) Action {
	return Action{Kind: ActionSetEthDst, MAC: m}
}

// SetIPv4Dst returns an action that rewrites the destination IPv4 address.
func SetIPv4Dst(ip netip.Addr) Action {
	return Action{Kind: ActionSetIPv4Dst, IP: ip}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionOutput:
		return fmt.Sprintf("output:%s", a.Port)
	case ActionGroup:
		return fmt.Sprintf("group:%d", a.Group)
	case ActionSetEthDst:
		return fmt.Sprintf("set_eth_dst:%s", a.MAC)
	case ActionSetIPv4Dst:
		return fmt.Sprintf("set_ipv4_dst:%s", a.IP)
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(a.Kind))
	}
}

// Match selects the packets a flow applies to. Zero fields are wildcards.
type Match struct {
	InPort     addr.Port
	EthDst     *addr.MAC
	EthDstMask *addr.MAC
}

// FlowMod adds or deletes a flow entry in table 0.
type FlowMod struct {
	Command  Command
	Priority uint16
	Match    Match
	Actions  []Action
	// Meter is the meter applied before the actions, 0 for none.
	Meter       uint32
	IdleTimeout uint16
	// OutPort and OutGroup restrict delete commands to flows that output to
	// the given port or group. They are ignored for Add.
	OutPort  addr.Port
	OutGroup uint32
}

// GroupType is the OpenFlow group type.
type GroupType uint8

const (
	GroupTypeAll GroupType = iota
	GroupTypeSelect
)

// Bucket is one bucket of a group.
type Bucket struct {
	Weight  uint16
	Actions []Action
}

// GroupMod adds or deletes a group.
type GroupMod struct {
	Command Command
	Type    GroupType
	GroupID uint32
	Buckets []Bucket
}

// MeterMod adds or deletes a meter with a single drop band.
type MeterMod struct {
	Command  Command
	MeterID  uint32
	RateKbps uint32
}

// PacketOut injects a frame into the switch.
type PacketOut struct {
	InPort  addr.Port
	Actions []Action
	Data    []byte
}
