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
	"context"
	"net/netip"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/prom"
)

// Flow priorities in table 0.
const (
	PriorityMiss      uint16 = 0
	PriorityDiscovery uint16 = 1
	PriorityForward   uint16 = 5
)

// Request types used as metric label.
const (
	typeFlowMod   = "flow_mod"
	typeGroupMod  = "group_mod"
	typeMeterMod  = "meter_mod"
	typePacketOut = "packet_out"
)

// HostInfo is the address information of a host attached to a switch port.
type HostInfo struct {
	MAC addr.MAC
	IP  netip.Addr
}

// HostLookup resolves the host attached to a switch port.
type HostLookup interface {
	HostAt(dpid addr.DPID, port addr.Port) (HostInfo, bool)
}

// Metrics are the metrics of the synchronizer. Nil fields are ignored.
type Metrics struct {
	// Requests returns the counter for requests of type typ that finished
	// with result.
	Requests func(typ, result string) metrics.Counter
}

type meterKey struct {
	node addr.DPID
	id   addr.StreamID
}

// Synchronizer turns forwarding entry transitions into driver requests.
// It is not safe for concurrent use; the controller event loop owns it.
type Synchronizer struct {
	Driver Driver
	// Hosts is used to rewrite the destination of group buckets that lead to
	// a host. Optional.
	Hosts   HostLookup
	Metrics Metrics

	// meters holds the rate of every meter currently installed.
	meters map[meterKey]uint32
}

// Sync brings the rule of stream id at node from prev to next. Equal entries
// result in no requests.
func (s *Synchronizer) Sync(ctx context.Context, node addr.DPID, id addr.StreamID,
	prev, next Entry) {

	if prev.Equal(next) {
		return
	}
	logger := log.FromCtx(ctx)
	if logger.Enabled(log.DebugLevel) {
		logger.Debug("Syncing stream entry", "node", node, "stream", id,
			"prev", prev, "next", next)
	}
	group := StreamGroupID(id)
	eth := id.MAC()

	if len(prev.Out) > 1 {
		s.groupMod(ctx, node, GroupMod{
			Command: Delete,
			Type:    GroupTypeAll,
			GroupID: group,
		})
	}
	if len(next.Out) > 1 {
		buckets := make([]Bucket, 0, len(next.Out))
		for _, p := range next.Out {
			buckets = append(buckets, Bucket{Actions: s.bucketActions(node, p)})
		}
		s.groupMod(ctx, node, GroupMod{
			Command: Add,
			Type:    GroupTypeAll,
			GroupID: group,
			Buckets: buckets,
		})
	}
	if !prev.Empty() {
		m := FlowMod{
			Command:  Delete,
			Priority: PriorityForward,
			Match:    Match{InPort: prev.In, EthDst: &eth},
			OutPort:  PortAny,
			OutGroup: GroupAny,
		}
		switch len(prev.Out) {
		case 0:
		case 1:
			m.OutPort = prev.Out[0]
		default:
			m.OutGroup = group
		}
		s.flowMod(ctx, node, m)
	}
	if !next.Empty() {
		m := FlowMod{
			Command:  Add,
			Priority: PriorityForward,
			Match:    Match{InPort: next.In, EthDst: &eth},
		}
		switch len(next.Out) {
		case 0:
		case 1:
			m.Actions = []Action{Output(next.Out[0])}
		default:
			m.Actions = []Action{Group(group)}
		}
		if _, ok := s.meters[meterKey{node: node, id: id}]; ok {
			m.Meter = MeterID(id)
		}
		s.flowMod(ctx, node, m)
	}
}

func (s *Synchronizer) bucketActions(node addr.DPID, p addr.Port) []Action {
	if s.Hosts == nil {
		return []Action{Output(p)}
	}
	h, ok := s.Hosts.HostAt(node, p)
	if !ok {
		return []Action{Output(p)}
	}
	actions := []Action{SetEthDst(h.MAC)}
	if h.IP.Is4() {
		actions = append(actions, SetIPv4Dst(h.IP))
	}
	return append(actions, Output(p))
}

// SyncMeter replaces the meter of stream id at node. A rate of 0 means no
// meter. Flows installed afterwards through Sync reference the meter.
//
// Deleting a meter also deletes the flows using it, so callers remove the
// stream's flow before and re-install it after calling SyncMeter.
func (s *Synchronizer) SyncMeter(ctx context.Context, node addr.DPID, id addr.StreamID,
	prevRate, nextRate uint32) {

	if prevRate == nextRate {
		return
	}
	if s.meters == nil {
		s.meters = make(map[meterKey]uint32)
	}
	key := meterKey{node: node, id: id}
	if prevRate != 0 {
		s.meterMod(ctx, node, MeterMod{Command: Delete, MeterID: MeterID(id)})
		delete(s.meters, key)
	}
	if nextRate != 0 {
		s.meterMod(ctx, node, MeterMod{Command: Add, MeterID: MeterID(id), RateKbps: nextRate})
		s.meters[key] = nextRate
	}
}

// HasMeter reports whether a meter for stream id is installed at node.
func (s *Synchronizer) HasMeter(node addr.DPID, id addr.StreamID) bool {
	_, ok := s.meters[meterKey{node: node, id: id}]
	return ok
}

// Forget drops all meter bookkeeping for node, e.g., after it disconnected.
func (s *Synchronizer) Forget(node addr.DPID) {
	for k := range s.meters {
		if k.node == node {
			delete(s.meters, k)
		}
	}
}

// InstallDefaults resets the switch to the bootstrap state: every flow, group
// and meter is removed, unmatched packets go to the controller and IPv6
// discovery traffic is dropped.
func (s *Synchronizer) InstallDefaults(ctx context.Context, node addr.DPID) {
	s.Forget(node)
	s.flowMod(ctx, node, FlowMod{
		Command:  Delete,
		OutPort:  PortAny,
		OutGroup: GroupAny,
	})
	s.groupMod(ctx, node, GroupMod{Command: Delete, GroupID: GroupIDAll})
	s.meterMod(ctx, node, MeterMod{Command: Delete, MeterID: MeterIDAll})
	s.flowMod(ctx, node, FlowMod{
		Command:  Add,
		Priority: PriorityMiss,
		Actions:  []Action{Output(PortController)},
	})
	prefix, mask := addr.IPv6MulticastPrefix, addr.IPv6MulticastMask
	s.flowMod(ctx, node, FlowMod{
		Command:  Add,
		Priority: PriorityDiscovery,
		Match:    Match{EthDst: &prefix, EthDstMask: &mask},
	})
}

// PacketOut sends data out of port at node.
func (s *Synchronizer) PacketOut(ctx context.Context, node addr.DPID, port addr.Port,
	data []byte) {

	err := s.Driver.PacketOut(node, PacketOut{
		InPort:  PortController,
		Actions: []Action{Output(port)},
		Data:    data,
	})
	s.report(ctx, typePacketOut, node, err)
}

func (s *Synchronizer) flowMod(ctx context.Context, node addr.DPID, m FlowMod) {
	s.report(ctx, typeFlowMod, node, s.Driver.FlowMod(node, m))
}

func (s *Synchronizer) groupMod(ctx context.Context, node addr.DPID, m GroupMod) {
	s.report(ctx, typeGroupMod, node, s.Driver.GroupMod(node, m))
}

func (s *Synchronizer) meterMod(ctx context.Context, node addr.DPID, m MeterMod) {
	s.report(ctx, typeMeterMod, node, s.Driver.MeterMod(node, m))
}

func (s *Synchronizer) report(ctx context.Context, typ string, node addr.DPID, err error) {
	result := prom.Success
	if err != nil {
		result = prom.ErrNetwork
		log.FromCtx(ctx).Info("Sending switch request failed", "type", typ,
			"node", node, "err", err)
	}
	if s.Metrics.Requests != nil {
		metrics.CounterInc(s.Metrics.Requests(typ, result))
	}
}
