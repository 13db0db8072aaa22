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

package controller

import (
	"context"

	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

// Event is an input of the controller. The set of events is closed; the
// concrete types are the ones declared in this package.
type Event interface {
	// Type is the name of the event type used in logs and metrics.
	Type() string
	event()
}

// SwitchEnter is emitted when a switch connects. The switch is expected to
// be reset to the bootstrap state by the controller.
type SwitchEnter struct {
	Node  addr.DPID
	Ports []addr.Port
}

// SwitchLeave is emitted when the connection to a switch is lost.
type SwitchLeave struct {
	Node addr.DPID
}

// PortAdd is emitted when a port of a switch comes up.
type PortAdd struct {
	Node addr.DPID
	Port addr.Port
}

// PortDelete is emitted when a port of a switch goes down.
type PortDelete struct {
	Node addr.DPID
	Port addr.Port
}

// LinkAdd is emitted for every observed direction of a link.
type LinkAdd struct {
	Link topology.Link
}

// LinkDelete is emitted when a link is no longer observed.
type LinkDelete struct {
	Link topology.Link
}

// PacketIn carries a frame a switch handed to the controller.
type PacketIn struct {
	Node   addr.DPID
	InPort addr.Port
	Data   []byte
}

// SourceEnter registers a stream source.
type SourceEnter struct {
	Stream addr.StreamID
	Source streaming.Source
	// Rate in kbps, 0 selects the configured default.
	Rate uint32
}

// SourceLeave removes a stream.
type SourceLeave struct {
	Stream addr.StreamID
}

// ClientEnter subscribes the client at Node:Port to a stream.
type ClientEnter struct {
	Stream addr.StreamID
	MAC    addr.MAC
	Node   addr.DPID
	Port   addr.Port
}

// ClientLeave unsubscribes the client at Node:Port from a stream.
type ClientLeave struct {
	Stream addr.StreamID
	MAC    addr.MAC
	Node   addr.DPID
	Port   addr.Port
}

// BandwidthChange limits the rate of a stream at a switch. Rate 0 removes the
// limit.
type BandwidthChange struct {
	Stream addr.StreamID
	Node   addr.DPID
	Rate   uint32
}

// query runs fn on the state from within the event loop.
type query struct {
	name string
	fn   func(context.Context, *State) error
}

func (SwitchEnter) Type() string     { return "switch_enter" }
func (SwitchLeave) Type() string     { return "switch_leave" }
func (PortAdd) Type() string         { return "port_add" }
func (PortDelete) Type() string      { return "port_delete" }
func (LinkAdd) Type() string         { return "link_add" }
func (LinkDelete) Type() string      { return "link_delete" }
func (PacketIn) Type() string        { return "packet_in" }
func (SourceEnter) Type() string     { return "source_enter" }
func (SourceLeave) Type() string     { return "source_leave" }
func (ClientEnter) Type() string     { return "client_enter" }
func (ClientLeave) Type() string     { return "client_leave" }
func (BandwidthChange) Type() string { return "bandwidth_change" }
func (q query) Type() string         { return "query_" + q.name }

func (SwitchEnter) event()     {}
func (SwitchLeave) event()     {}
func (PortAdd) event()         {}
func (PortDelete) event()      {}
func (LinkAdd) event()         {}
func (LinkDelete) event()      {}
func (PacketIn) event()        {}
func (SourceEnter) event()     {}
func (SourceLeave) event()     {}
func (ClientEnter) event()     {}
func (ClientLeave) event()     {}
func (BandwidthChange) event() {}
func (query) event()           {}
