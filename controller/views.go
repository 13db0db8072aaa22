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
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/controller/hosts"
	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

// StreamAtNode is the state of a stream at one switch.
type StreamAtNode struct {
	Bandwidth uint32 `json:"bandwidth"`
	Distance  int    `json:"distance"`
}

// Node is the snapshot of a switch.
type Node struct {
	DPID    addr.DPID                      `json:"dpid"`
	Ports   []addr.Port                    `json:"ports"`
	Streams map[addr.StreamID]StreamAtNode `json:"streams,omitempty"`
}

// Host is the snapshot of a host together with the streams it takes part in.
type Host struct {
	hosts.Host
	Sources  []addr.StreamID `json:"sources"`
	Receives []addr.StreamID `json:"receives"`
}

// Nodes returns all switches with the streams whose tree contains them.
func (s *State) Nodes() []Node {
	streams := s.streams.Streams()
	nodes := make([]Node, 0, len(s.graph.Nodes()))
	for _, n := range s.graph.Nodes() {
		node := Node{DPID: n, Ports: s.graph.Ports(n)}
		for _, info := range streams {
			ni, ok := info.Nodes[n]
			if !ok {
				continue
			}
			if node.Streams == nil {
				node.Streams = make(map[addr.StreamID]StreamAtNode)
			}
			node.Streams[info.ID] = StreamAtNode{Bandwidth: ni.Bandwidth, Distance: ni.Distance}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Links returns all live links.
func (s *State) Links() []topology.Link {
	return s.graph.Links()
}

// Hosts returns all known hosts with the streams they source or receive.
// Hosts are matched to streams by MAC address.
func (s *State) Hosts() []Host {
	sources := make(map[addr.MAC]map[addr.StreamID]struct{})
	receives := make(map[addr.MAC]map[addr.StreamID]struct{})
	add := func(m map[addr.MAC]map[addr.StreamID]struct{}, mac addr.MAC, id addr.StreamID) {
		if m[mac] == nil {
			m[mac] = make(map[addr.StreamID]struct{})
		}
		m[mac][id] = struct{}{}
	}
	for _, info := range s.streams.Streams() {
		add(sources, info.Source.MAC, info.ID)
		for _, c := range info.Clients {
			add(receives, c.MAC, info.ID)
		}
	}
	all := s.hosts.All()
	res := make([]Host, 0, len(all))
	for _, h := range all {
		res = append(res, Host{
			Host:     h,
			Sources:  slices.Sorted(maps.Keys(sources[h.MAC])),
			Receives: slices.Sorted(maps.Keys(receives[h.MAC])),
		})
	}
	return res
}

// Streams returns a snapshot of all streams.
func (s *State) Streams() []streaming.Info {
	return s.streams.Streams()
}

// FailedStreams returns the ids of the streams that could not be routed.
func (s *State) FailedStreams() []addr.StreamID {
	return s.streams.Failed()
}

// Flows returns the installed unicast flows.
func (s *State) Flows() []switching.Flow {
	return s.switching.Flows()
}

// DiscoverHosts probes every host port for hosts. It returns the number of
// probes sent.
func (s *State) DiscoverHosts(ctx context.Context) (int, error) {
	return s.discoverer.Discover(ctx)
}
