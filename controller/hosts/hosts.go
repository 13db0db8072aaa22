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

// Package hosts keeps track of the hosts attached to the switch fabric.
//
// Hosts are learned passively from the frames switches hand to the
// controller and actively by broadcasting probes out of every port that is
// not used by a link.
package hosts

import (
	"cmp"
	"maps"
	"net/netip"
	"slices"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Host is a host attached to a switch port.
type Host struct {
	MAC  addr.MAC   `json:"mac"`
	IP   netip.Addr `json:"ip"`
	Node addr.DPID  `json:"node"`
	Port addr.Port  `json:"port"`
}

type location struct {
	node addr.DPID
	port addr.Port
}

// Registry maps hosts to their location. It is not safe for concurrent use.
type Registry struct {
	byMAC  map[addr.MAC]Host
	byPort map[location]addr.MAC
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byMAC:  make(map[addr.MAC]Host),
		byPort: make(map[location]addr.MAC),
	}
}

// Learn records h. A host seen at a new location moves there, an invalid IP
// keeps the address learned before. Learn reports whether anything changed.
func (r *Registry) Learn(h Host) bool {
	old, known := r.byMAC[h.MAC]
	if !h.IP.IsValid() {
		h.IP = old.IP
	}
	if known && old == h {
		return false
	}
	if known {
		delete(r.byPort, location{node: old.Node, port: old.Port})
	}
	loc := location{node: h.Node, port: h.Port}
	if prev, ok := r.byPort[loc]; ok && prev != h.MAC {
		delete(r.byMAC, prev)
	}
	r.byMAC[h.MAC] = h
	r.byPort[loc] = h.MAC
	return true
}

// ByMAC returns the host with the given address.
func (r *Registry) ByMAC(mac addr.MAC) (Host, bool) {
	h, ok := r.byMAC[mac]
	return h, ok
}

// At returns the host attached to port of node.
func (r *Registry) At(node addr.DPID, port addr.Port) (Host, bool) {
	mac, ok := r.byPort[location{node: node, port: port}]
	if !ok {
		return Host{}, false
	}
	return r.byMAC[mac], true
}

// HostAt implements flowsync.HostLookup.
func (r *Registry) HostAt(node addr.DPID, port addr.Port) (flowsync.HostInfo, bool) {
	h, ok := r.At(node, port)
	if !ok {
		return flowsync.HostInfo{}, false
	}
	return flowsync.HostInfo{MAC: h.MAC, IP: h.IP}, true
}

// ForgetNode removes all hosts attached to node and returns them.
func (r *Registry) ForgetNode(node addr.DPID) []Host {
	var removed []Host
	for loc, mac := range r.byPort {
		if loc.node != node {
			continue
		}
		removed = append(removed, r.byMAC[mac])
		delete(r.byMAC, mac)
		delete(r.byPort, loc)
	}
	sortHosts(removed)
	return removed
}

// ForgetPort removes the host attached to port of node, if any.
func (r *Registry) ForgetPort(node addr.DPID, port addr.Port) (Host, bool) {
	loc := location{node: node, port: port}
	mac, ok := r.byPort[loc]
	if !ok {
		return Host{}, false
	}
	h := r.byMAC[mac]
	delete(r.byMAC, mac)
	delete(r.byPort, loc)
	return h, true
}

// All returns all hosts ordered by location.
func (r *Registry) All() []Host {
	all := slices.Collect(maps.Values(r.byMAC))
	sortHosts(all)
	return all
}

// Len returns the number of known hosts.
func (r *Registry) Len() int {
	return len(r.byMAC)
}

func sortHosts(hosts []Host) {
	slices.SortFunc(hosts, func(a, b Host) int {
		return cmp.Or(cmp.Compare(a.Node, b.Node), cmp.Compare(a.Port, b.Port))
	})
}
