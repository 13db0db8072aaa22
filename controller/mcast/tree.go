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

// Package mcast computes multicast distribution trees for streams.
//
// A tree has exactly one root, the node the stream is sourced at. Every
// other node records its parent and every node records its children, so the
// tree can be walked in both directions. The functions in this package are
// pure; callers own the trees they pass in and get back.
package mcast

import (
	"cmp"
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
)

// Node is a node of a distribution tree.
type Node struct {
	// Parent is the upstream node. It is meaningless for the root.
	Parent   addr.DPID
	IsRoot   bool
	Children map[addr.DPID]struct{}
}

// Equal reports whether both nodes have the same position in the tree.
func (n Node) Equal(o Node) bool {
	if n.IsRoot != o.IsRoot || (!n.IsRoot && n.Parent != o.Parent) {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for c := range n.Children {
		if _, ok := o.Children[c]; !ok {
			return false
		}
	}
	return true
}

// ChildList returns the children in ascending order.
func (n Node) ChildList() []addr.DPID {
	return slices.Sorted(maps.Keys(n.Children))
}

// Tree is a distribution tree indexed by node.
type Tree map[addr.DPID]Node

// NewTree returns a tree that only contains the root.
func NewTree(root addr.DPID) Tree {
	return Tree{root: {IsRoot: true, Children: map[addr.DPID]struct{}{}}}
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	c := make(Tree, len(t))
	for id, n := range t {
		c[id] = Node{Parent: n.Parent, IsRoot: n.IsRoot, Children: maps.Clone(n.Children)}
	}
	return c
}

// Nodes returns the nodes of the tree in ascending order.
func (t Tree) Nodes() []addr.DPID {
	return slices.Sorted(maps.Keys(t))
}

// Has reports whether n is part of the tree.
func (t Tree) Has(n addr.DPID) bool {
	_, ok := t[n]
	return ok
}

// Links returns the links used by the tree in ascending order.
func (t Tree) Links() []topology.LinkKey {
	links := make([]topology.LinkKey, 0, len(t))
	for id, n := range t {
		if !n.IsRoot {
			links = append(links, topology.NewLinkKey(id, n.Parent))
		}
	}
	slices.SortFunc(links, func(a, b topology.LinkKey) int {
		return cmp.Or(cmp.Compare(a.A, b.A), cmp.Compare(a.B, b.B))
	})
	return links
}

// attach adds child below parent. parent must be in the tree.
func (t Tree) attach(parent, child addr.DPID) {
	t[child] = Node{Parent: parent, Children: map[addr.DPID]struct{}{}}
	t[parent].Children[child] = struct{}{}
}

// graft adds every node of path, which starts at a tree node, that is not
// yet part of the tree. It returns the nodes whose entry changed.
func (t Tree) graft(path []addr.DPID) []addr.DPID {
	var changed []addr.DPID
	for i := 1; i < len(path); i++ {
		if t.Has(path[i]) {
			continue
		}
		t.attach(path[i-1], path[i])
		changed = append(changed, path[i-1], path[i])
	}
	return changed
}

// Diff returns the nodes that are only in one of the trees or whose position
// differs.
func Diff(a, b Tree) map[addr.DPID]struct{} {
	changed := make(map[addr.DPID]struct{})
	for id, n := range a {
		if o, ok := b[id]; !ok || !n.Equal(o) {
			changed[id] = struct{}{}
		}
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			changed[id] = struct{}{}
		}
	}
	return changed
}

// Validate checks that tree is a well-formed distribution tree rooted at
// source that contains every node with clients.
func Validate(tree Tree, source addr.DPID, clients map[addr.DPID]map[addr.Port]struct{}) error {
	root, ok := tree[source]
	if !ok || !root.IsRoot {
		return serrors.New("source is not the root", "source", source)
	}
	for id, n := range tree {
		if n.IsRoot {
			if id != source {
				return serrors.New("multiple roots", "node", id, "source", source)
			}
			continue
		}
		p, ok := tree[n.Parent]
		if !ok {
			return serrors.New("parent not in tree", "node", id, "parent", n.Parent)
		}
		if _, ok := p.Children[id]; !ok {
			return serrors.New("parent does not list child", "node", id, "parent", n.Parent)
		}
		for c := range n.Children {
			if cn, ok := tree[c]; !ok || cn.IsRoot || cn.Parent != id {
				return serrors.New("child does not point back", "node", id, "child", c)
			}
		}
	}
	if seen := len(Distances(tree, source)); seen != len(tree) {
		return serrors.New("tree not connected", "reachable", seen, "nodes", len(tree))
	}
	for n, ports := range clients {
		if len(ports) > 0 && !tree.Has(n) {
			return serrors.New("client node not in tree", "node", n)
		}
	}
	return nil
}

// Distances returns the hop distance of every node reachable from source
// along the tree.
func Distances(tree Tree, source addr.DPID) map[addr.DPID]int {
	dist := make(map[addr.DPID]int, len(tree))
	if !tree.Has(source) {
		return dist
	}
	dist[source] = 0
	queue := []addr.DPID{source}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range tree[n].ChildList() {
			if _, seen := dist[c]; seen {
				continue
			}
			dist[c] = dist[n] + 1
			queue = append(queue, c)
		}
	}
	return dist
}

// EffectiveBandwidth returns the rate available at every node: the minimum
// of the node's own rate and the effective rate of its parent. The own rate
// is the override of the node, or def if it has none.
func EffectiveBandwidth(tree Tree, source addr.DPID, overrides map[addr.DPID]uint32,
	def uint32) map[addr.DPID]uint32 {

	own := func(n addr.DPID) uint32 {
		if r, ok := overrides[n]; ok {
			return r
		}
		return def
	}
	eff := make(map[addr.DPID]uint32, len(tree))
	if !tree.Has(source) {
		return eff
	}
	eff[source] = own(source)
	queue := []addr.DPID{source}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range tree[n].ChildList() {
			if _, seen := eff[c]; seen {
				continue
			}
			eff[c] = min(own(c), eff[n])
			queue = append(queue, c)
		}
	}
	return eff
}
