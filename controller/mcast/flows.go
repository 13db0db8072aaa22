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

package mcast

import (
	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// PortLookup returns the port on a that leads to the neighbour b.
type PortLookup func(a, b addr.DPID) (addr.Port, bool)

// Flows derives the forwarding entry of every tree node. The root receives
// the stream on sourcePort, every other node on the port towards its parent.
// A node forwards to its children and to its client ports, except for a
// client port that is also the ingress.
func Flows(tree Tree, sourcePort addr.Port, clients map[addr.DPID]map[addr.Port]struct{},
	outPort PortLookup) (map[addr.DPID]flowsync.Entry, error) {

	entries := make(map[addr.DPID]flowsync.Entry, len(tree))
	for id, n := range tree {
		in := sourcePort
		if !n.IsRoot {
			p, ok := outPort(id, n.Parent)
			if !ok {
				return nil, serrors.New("no link to parent", "node", id, "parent", n.Parent)
			}
			in = p
		}
		out := make([]addr.Port, 0, len(n.Children)+len(clients[id]))
		for c := range n.Children {
			p, ok := outPort(id, c)
			if !ok {
				return nil, serrors.New("no link to child", "node", id, "child", c)
			}
			out = append(out, p)
		}
		for p := range clients[id] {
			if p != in {
				out = append(out, p)
			}
		}
		entries[id] = flowsync.NewEntry(in, out...)
	}
	return entries, nil
}
