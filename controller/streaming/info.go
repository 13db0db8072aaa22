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

package streaming

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/mcast"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/private/topology"
)

// Client is a consumer of a stream.
type Client struct {
	MAC  addr.MAC  `json:"mac"`
	Node addr.DPID `json:"node"`
	Port addr.Port `json:"port"`
}

// NodeInfo is the state of a stream at one switch of its tree.
type NodeInfo struct {
	// Bandwidth is the effective rate in kbps at the switch.
	Bandwidth uint32 `json:"bandwidth"`
	// Distance is the number of hops from the source switch.
	Distance int            `json:"distance"`
	Entry    flowsync.Entry `json:"-"`
}

// Info is a snapshot of a stream.
type Info struct {
	ID        addr.StreamID          `json:"id"`
	Source    Source                 `json:"source"`
	Rate      uint32                 `json:"rate"`
	State     string                 `json:"state"`
	Clients   []Client               `json:"clients"`
	Tree      mcast.Tree             `json:"-"`
	Links     []topology.LinkKey     `json:"links"`
	Nodes     map[addr.DPID]NodeInfo `json:"nodes"`
	Overrides map[addr.DPID]uint32   `json:"overrides,omitempty"`
}

// Streams returns a snapshot of all streams ordered by id.
func (r *Registry) Streams() []Info {
	infos := make([]Info, 0, len(r.streams))
	for _, id := range r.ids() {
		infos = append(infos, r.info(r.streams[id]))
	}
	return infos
}

// Stream returns a snapshot of a single stream.
func (r *Registry) Stream(id addr.StreamID) (Info, bool) {
	s, ok := r.streams[id]
	if !ok {
		return Info{}, false
	}
	return r.info(s), true
}

// Failed returns the ids of the failed streams in ascending order.
func (r *Registry) Failed() []addr.StreamID {
	return slices.Sorted(maps.Keys(r.failed))
}

// CheckIngress inspects a stream packet that reached the controller. A
// packet of an installed stream only gets here if the switch state diverges
// from the registry, which is logged.
func (r *Registry) CheckIngress(ctx context.Context, id addr.StreamID, node addr.DPID,
	inPort addr.Port) {

	logger := log.FromCtx(ctx)
	s, ok := r.streams[id]
	if !ok {
		logger.Debug("Packet of unregistered stream", "stream", id, "node", node)
		return
	}
	entry, ok := s.entries[node]
	if !ok {
		logger.Info("Stream packet at switch outside of tree", "stream", id, "node", node,
			"in_port", inPort)
		return
	}
	if entry.In != inPort {
		logger.Info("Stream packet on unexpected port", "stream", id, "node", node,
			"expected", entry.In, "actual", inPort)
		return
	}
	logger.Info("Stream flow not installed as expected", "stream", id, "node", node)
}

func (r *Registry) info(s *stream) Info {
	state := StateActive
	if _, failed := r.failed[s.id]; failed {
		state = StateFailed
	}
	clients := make([]Client, 0, len(s.macs))
	for k, mac := range s.macs {
		clients = append(clients, Client{MAC: mac, Node: k.node, Port: k.port})
	}
	slices.SortFunc(clients, func(a, b Client) int {
		return cmp.Or(cmp.Compare(a.Node, b.Node), cmp.Compare(a.Port, b.Port))
	})
	rate := s.rate
	if rate == 0 {
		rate = r.defaultRate
	}
	nodes := make(map[addr.DPID]NodeInfo, len(s.tree))
	if s.tree != nil {
		bw := mcast.EffectiveBandwidth(s.tree, s.source.Node, s.overrides, rate)
		dist := mcast.Distances(s.tree, s.source.Node)
		for n := range s.tree {
			nodes[n] = NodeInfo{Bandwidth: bw[n], Distance: dist[n], Entry: s.entries[n]}
		}
	}
	return Info{
		ID:        s.id,
		Source:    s.source,
		Rate:      rate,
		State:     state,
		Clients:   clients,
		Tree:      s.tree.Clone(),
		Links:     r.links.Links(s.id),
		Nodes:     nodes,
		Overrides: maps.Clone(s.overrides),
	}
}
