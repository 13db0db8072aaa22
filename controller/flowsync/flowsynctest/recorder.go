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

// Package flowsynctest provides a flowsync.Driver that records requests and
// keeps a model of the resulting switch tables.
package flowsynctest

import (
	"slices"
	"sync"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Request is one recorded request. Exactly one of the pointer fields is set.
type Request struct {
	Node      addr.DPID
	Flow      *flowsync.FlowMod
	Group     *flowsync.GroupMod
	Meter     *flowsync.MeterMod
	PacketOut *flowsync.PacketOut
}

// Switch is the modelled state of one switch.
type Switch struct {
	Flows  []flowsync.FlowMod
	Groups map[uint32]flowsync.GroupMod
	Meters map[uint32]flowsync.MeterMod
}

// Recorder is a flowsync.Driver for tests. It is safe for concurrent use.
// Err, if set, is returned from every call after recording it.
type Recorder struct {
	Err error

	mu       sync.Mutex
	requests []Request
	switches map[addr.DPID]*Switch
}

// FlowMod implements flowsync.Driver.
func (r *Recorder) FlowMod(dpid addr.DPID, m flowsync.FlowMod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{Node: dpid, Flow: &m})
	sw := r.sw(dpid)
	if m.Command == flowsync.Add {
		sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
			return f.Priority == m.Priority && sameMatch(f.Match, m.Match)
		})
		sw.Flows = append(sw.Flows, m)
		return r.Err
	}
	sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
		return deletes(m, f)
	})
	return r.Err
}

// GroupMod implements flowsync.Driver.
func (r *Recorder) GroupMod(dpid addr.DPID, m flowsync.GroupMod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{Node: dpid, Group: &m})
	sw := r.sw(dpid)
	switch {
	case m.Command == flowsync.Add:
		sw.Groups[m.GroupID] = m
	case m.GroupID == flowsync.GroupIDAll:
		clear(sw.Groups)
		sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
			_, ok := usesGroup(f)
			return ok
		})
	default:
		delete(sw.Groups, m.GroupID)
		sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
			g, ok := usesGroup(f)
			return ok && g == m.GroupID
		})
	}
	return r.Err
}

// MeterMod implements flowsync.Driver.
func (r *Recorder) MeterMod(dpid addr.DPID, m flowsync.MeterMod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{Node: dpid, Meter: &m})
	sw := r.sw(dpid)
	switch {
	case m.Command == flowsync.Add:
		sw.Meters[m.MeterID] = m
	case m.MeterID == flowsync.MeterIDAll:
		clear(sw.Meters)
		sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
			return f.Meter != 0
		})
	default:
		delete(sw.Meters, m.MeterID)
		sw.Flows = slices.DeleteFunc(sw.Flows, func(f flowsync.FlowMod) bool {
			return f.Meter == m.MeterID
		})
	}
	return r.Err
}

// PacketOut implements flowsync.Driver.
func (r *Recorder) PacketOut(dpid addr.DPID, p flowsync.PacketOut) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{Node: dpid, PacketOut: &p})
	return r.Err
}

// Requests returns all requests recorded since the last Reset.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.requests)
}

// Reset forgets the recorded requests. The modelled switch state is kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
}

// Switch returns a copy of the modelled state of dpid.
func (r *Recorder) Switch(dpid addr.DPID) Switch {
	r.mu.Lock()
	defer r.mu.Unlock()
	sw := r.sw(dpid)
	groups := make(map[uint32]flowsync.GroupMod, len(sw.Groups))
	for k, v := range sw.Groups {
		groups[k] = v
	}
	meters := make(map[uint32]flowsync.MeterMod, len(sw.Meters))
	for k, v := range sw.Meters {
		meters[k] = v
	}
	return Switch{Flows: slices.Clone(sw.Flows), Groups: groups, Meters: meters}
}

// StreamEntry reconstructs the forwarding entry of stream id at dpid from
// the modelled switch state. It returns the zero entry if no flow for the
// stream is installed.
func (r *Recorder) StreamEntry(dpid addr.DPID, id addr.StreamID) flowsync.Entry {
	return r.Entry(dpid, id.MAC())
}

// Entry reconstructs the forwarding entry for frames towards eth at dpid. The
// input port of unicast entries is 0.
func (r *Recorder) Entry(dpid addr.DPID, eth addr.MAC) flowsync.Entry {
	sw := r.Switch(dpid)
	for _, f := range sw.Flows {
		if f.Priority != flowsync.PriorityForward || f.Match.EthDst == nil ||
			*f.Match.EthDst != eth {
			continue
		}
		var out []addr.Port
		for _, a := range f.Actions {
			switch a.Kind {
			case flowsync.ActionOutput:
				out = append(out, a.Port)
			case flowsync.ActionGroup:
				for _, b := range sw.Groups[a.Group].Buckets {
					for _, ba := range b.Actions {
						if ba.Kind == flowsync.ActionOutput {
							out = append(out, ba.Port)
						}
					}
				}
			}
		}
		return flowsync.NewEntry(f.Match.InPort, out...)
	}
	return flowsync.Entry{}
}

func (r *Recorder) sw(dpid addr.DPID) *Switch {
	if r.switches == nil {
		r.switches = make(map[addr.DPID]*Switch)
	}
	sw, ok := r.switches[dpid]
	if !ok {
		sw = &Switch{
			Groups: make(map[uint32]flowsync.GroupMod),
			Meters: make(map[uint32]flowsync.MeterMod),
		}
		r.switches[dpid] = sw
	}
	return sw
}

func sameMatch(a, b flowsync.Match) bool {
	return a.InPort == b.InPort && eqMAC(a.EthDst, b.EthDst) && eqMAC(a.EthDstMask, b.EthDstMask)
}

func eqMAC(a, b *addr.MAC) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// deletes reports whether the non-strict delete request d removes flow f.
func deletes(d, f flowsync.FlowMod) bool {
	if d.Match.InPort != 0 && d.Match.InPort != f.Match.InPort {
		return false
	}
	if d.Match.EthDst != nil && !eqMAC(d.Match.EthDst, f.Match.EthDst) {
		return false
	}
	if d.OutPort != flowsync.PortAny && !outputs(f, d.OutPort) {
		return false
	}
	if d.OutGroup != flowsync.GroupAny {
		if g, ok := usesGroup(f); !ok || g != d.OutGroup {
			return false
		}
	}
	return true
}

func outputs(f flowsync.FlowMod, p addr.Port) bool {
	return slices.ContainsFunc(f.Actions, func(a flowsync.Action) bool {
		return a.Kind == flowsync.ActionOutput && a.Port == p
	})
}

func usesGroup(f flowsync.FlowMod) (uint32, bool) {
	for _, a := range f.Actions {
		if a.Kind == flowsync.ActionGroup {
			return a.Group, true
		}
	}
	return 0, false
}
