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
	"fmt"
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/private/topology"
)

// EventKind is the kind of change a tree is recomputed for.
type EventKind uint8

const (
	// TopologyChanged rebuilds the tree from scratch.
	TopologyChanged EventKind = iota
	// ClientEnter grafts the event node onto the tree.
	ClientEnter
	// ClientLeave prunes the branch ending at the event node.
	ClientLeave
)

func (k EventKind) String() string {
	switch k {
	case TopologyChanged:
		return "topology_changed"
	case ClientEnter:
		return "client_enter"
	case ClientLeave:
		return "client_leave"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

// Event describes why a tree is recomputed. Node is only used by client
// events.
type Event struct {
	Kind EventKind
	Node addr.DPID
}

// Input is the stream state the tree is computed from. Clients must already
// reflect the event, i.e., for ClientEnter the node has the new port and for
// ClientLeave the port is gone. Tree is the current tree, nil if there is
// none; it is not modified.
type Input struct {
	Source  addr.DPID
	Clients map[addr.DPID]map[addr.Port]struct{}
	Tree    Tree
}

func (in Input) hasClients(n addr.DPID) bool {
	return len(in.Clients[n]) > 0
}

// ComputeTree returns the tree after the event and the nodes whose position
// in the tree changed or that the event concerns. ok is false if some client
// cannot be reached from the tree; the returned tree is nil in that case.
//
// Without a current tree, every event results in a full rebuild.
func ComputeTree(in Input, ev Event, paths topology.Paths) (Tree, map[addr.DPID]struct{}, bool) {
	if in.Tree == nil || ev.Kind == TopologyChanged {
		tree, ok := rebuild(in, paths)
		if !ok {
			return nil, nil, false
		}
		return tree, Diff(in.Tree, tree), true
	}
	switch ev.Kind {
	case ClientEnter:
		return enter(in, ev.Node, paths)
	case ClientLeave:
		tree, changed := leave(in, ev.Node)
		return tree, changed, true
	default:
		return nil, nil, false
	}
}

// rebuild builds the tree from the source by repeatedly grafting the
// shortest path of the closest (tree node, client) pair. Ties go to the
// lowest tree node, then to the lowest client node.
func rebuild(in Input, paths topology.Paths) (Tree, bool) {
	if !paths.Reachable(in.Source, in.Source) {
		return nil, false
	}
	tree := NewTree(in.Source)
	pending := make(map[addr.DPID]struct{})
	for n := range in.Clients {
		if in.hasClients(n) && !tree.Has(n) {
			pending[n] = struct{}{}
		}
	}
	for len(pending) > 0 {
		clients := slices.Sorted(maps.Keys(pending))
		var best []addr.DPID
		for _, t := range tree.Nodes() {
			for _, c := range clients {
				l, ok := paths.Len(t, c)
				if ok && (best == nil || l < len(best)) {
					best = paths.Path(t, c)
				}
			}
		}
		if best == nil {
			return nil, false
		}
		tree.graft(best)
		for _, n := range best {
			delete(pending, n)
		}
	}
	return tree, true
}

func enter(in Input, n addr.DPID, paths topology.Paths) (Tree, map[addr.DPID]struct{}, bool) {
	changed := map[addr.DPID]struct{}{n: {}}
	if in.Tree.Has(n) {
		return in.Tree.Clone(), changed, true
	}
	path := nearest(in.Tree, n, paths)
	if path == nil {
		return nil, nil, false
	}
	tree := in.Tree.Clone()
	for _, c := range tree.graft(path) {
		changed[c] = struct{}{}
	}
	return tree, changed, true
}

// nearest returns the shortest path from the closest tree node to n.
func nearest(tree Tree, n addr.DPID, paths topology.Paths) []addr.DPID {
	var best []addr.DPID
	for _, t := range tree.Nodes() {
		l, ok := paths.Len(t, n)
		if ok && (best == nil || l < len(best)) {
			best = paths.Path(t, n)
		}
	}
	return best
}

func leave(in Input, n addr.DPID) (Tree, map[addr.DPID]struct{}) {
	changed := make(map[addr.DPID]struct{})
	if !in.Tree.Has(n) {
		return in.Tree.Clone(), changed
	}
	changed[n] = struct{}{}
	tree := in.Tree.Clone()
	for cur := n; ; {
		node := tree[cur]
		if node.IsRoot || len(node.Children) > 0 || in.hasClients(cur) {
			break
		}
		delete(tree, cur)
		delete(tree[node.Parent].Children, cur)
		changed[node.Parent] = struct{}{}
		cur = node.Parent
	}
	return tree, changed
}
