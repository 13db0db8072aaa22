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

// Package topology contains the live switch graph. Nodes are switches, edges
// are bidirectional links between switch ports. The graph is mutated by the
// controller's event loop only and is not safe for concurrent use.
//
// After every mutation ShortestPaths must be called before path based
// algorithms run on the new topology.
package topology

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

const defaultCacheSize = 1024

// LinkKey is the normalized identifier of an undirected link, A < B.
type LinkKey struct {
	A addr.DPID
	B addr.DPID
}

// NewLinkKey returns the normalized key of the link between a and b.
func NewLinkKey(a, b addr.DPID) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{A: a, B: b}
}

// Has reports whether n is one of the link's end points.
func (k LinkKey) Has(n addr.DPID) bool {
	return k.A == n || k.B == n
}

func (k LinkKey) String() string {
	return fmt.Sprintf("%s-%s", k.A, k.B)
}

// Link is one direction of a link as seen by link discovery: frames sent on
// SrcPort of Src arrive on DstPort of Dst.
type Link struct {
	Src     addr.DPID
	SrcPort addr.Port
	Dst     addr.DPID
	DstPort addr.Port
}

// Reverse returns the opposite direction.
func (l Link) Reverse() Link {
	return Link{Src: l.Dst, SrcPort: l.DstPort, Dst: l.Src, DstPort: l.SrcPort}
}

// Key returns the normalized key of the link.
func (l Link) Key() LinkKey {
	return NewLinkKey(l.Src, l.Dst)
}

type pair struct {
	src addr.DPID
	dst addr.DPID
}

// Graph is the live topology.
type Graph struct {
	ports map[addr.DPID]map[addr.Port]struct{}
	// observed holds every direction reported by link discovery.
	observed map[pair]Link
	// adj holds the output port from a node towards a neighbour, for links
	// where both directions have been observed.
	adj map[addr.DPID]map[addr.DPID]addr.Port

	paths    Paths
	allPaths *arc.ARCCache[pair, [][]addr.DPID]
}

// New creates an empty graph.
func New() *Graph {
	cache, err := arc.NewARC[pair, [][]addr.DPID](defaultCacheSize)
	if err != nil {
		// Only fails for non-positive sizes.
		panic(err)
	}
	return &Graph{
		ports:    make(map[addr.DPID]map[addr.Port]struct{}),
		observed: make(map[pair]Link),
		adj:      make(map[addr.DPID]map[addr.DPID]addr.Port),
		allPaths: cache,
	}
}

func (g *Graph) mutated() {
	g.allPaths.Purge()
}

// AddNode adds a switch with the given ports. Adding a known switch replaces
// its port set and keeps its links.
func (g *Graph) AddNode(n addr.DPID, ports ...addr.Port) {
	set := make(map[addr.Port]struct{}, len(ports))
	for _, p := range ports {
		set[p] = struct{}{}
	}
	g.ports[n] = set
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = make(map[addr.DPID]addr.Port)
	}
	g.mutated()
}

// RemoveNode removes the switch and all incident links. It returns the keys
// of the removed links.
func (g *Graph) RemoveNode(n addr.DPID) []LinkKey {
	if !g.HasNode(n) {
		return nil
	}
	var removed []LinkKey
	for _, nb := range g.Neighbors(n) {
		removed = append(removed, NewLinkKey(n, nb))
		delete(g.adj[nb], n)
	}
	for p := range g.observed {
		if p.src == n || p.dst == n {
			delete(g.observed, p)
		}
	}
	delete(g.adj, n)
	delete(g.ports, n)
	g.mutated()
	return removed
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n addr.DPID) bool {
	_, ok := g.ports[n]
	return ok
}

// AddPort adds a port to a known switch.
func (g *Graph) AddPort(n addr.DPID, p addr.Port) {
	if ports, ok := g.ports[n]; ok {
		ports[p] = struct{}{}
	}
}

// RemovePort removes a port and every link that uses it. It returns the keys
// of the removed links.
func (g *Graph) RemovePort(n addr.DPID, p addr.Port) []LinkKey {
	ports, ok := g.ports[n]
	if !ok {
		return nil
	}
	delete(ports, p)
	var removed []LinkKey
	for _, nb := range g.Neighbors(n) {
		if g.adj[n][nb] == p {
			g.RemoveEdge(n, nb)
			removed = append(removed, NewLinkKey(n, nb))
		}
	}
	for k, l := range g.observed {
		if (l.Src == n && l.SrcPort == p) || (l.Dst == n && l.DstPort == p) {
			delete(g.observed, k)
		}
	}
	return removed
}

// AddLink records one observed direction of a link. The link becomes part of
// the graph once both directions have been observed; AddLink reports whether
// this call made that happen. Links between unknown switches are ignored.
func (g *Graph) AddLink(l Link) bool {
	if !g.HasNode(l.Src) || !g.HasNode(l.Dst) || l.Src == l.Dst {
		return false
	}
	g.observed[pair{l.Src, l.Dst}] = l
	rev, ok := g.observed[pair{l.Dst, l.Src}]
	if !ok {
		return false
	}
	_, had := g.adj[l.Src][l.Dst]
	g.adj[l.Src][l.Dst] = l.SrcPort
	g.adj[l.Dst][l.Src] = rev.SrcPort
	g.mutated()
	return !had
}

// AddEdge adds the link a:aPort <-> b:bPort in both directions at once.
func (g *Graph) AddEdge(a addr.DPID, aPort addr.Port, b addr.DPID, bPort addr.Port) bool {
	l := Link{Src: a, SrcPort: aPort, Dst: b, DstPort: bPort}
	g.AddLink(l)
	return g.AddLink(l.Reverse())
}

// RemoveEdge removes the link between a and b in both directions. Removing
// an unknown link is a no-op; RemoveEdge reports whether a link was removed.
func (g *Graph) RemoveEdge(a, b addr.DPID) bool {
	delete(g.observed, pair{a, b})
	delete(g.observed, pair{b, a})
	if _, ok := g.adj[a][b]; !ok {
		return false
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	g.mutated()
	return true
}

// HasEdge reports whether a live link between a and b exists.
func (g *Graph) HasEdge(a, b addr.DPID) bool {
	_, ok := g.adj[a][b]
	return ok
}

// OutPort returns the port on a that leads to the neighbour b.
func (g *Graph) OutPort(a, b addr.DPID) (addr.Port, bool) {
	p, ok := g.adj[a][b]
	return p, ok
}

// Nodes returns all switches in ascending order.
func (g *Graph) Nodes() []addr.DPID {
	return slices.Sorted(maps.Keys(g.ports))
}

// Neighbors returns the neighbours of n in ascending order.
func (g *Graph) Neighbors(n addr.DPID) []addr.DPID {
	return slices.Sorted(maps.Keys(g.adj[n]))
}

// Ports returns the ports of n in ascending order.
func (g *Graph) Ports(n addr.DPID) []addr.Port {
	return slices.Sorted(maps.Keys(g.ports[n]))
}

// Links returns every live link once, oriented from the lower to the higher
// DPID, sorted by key.
func (g *Graph) Links() []Link {
	var links []Link
	for a, nbs := range g.adj {
		for b, p := range nbs {
			if a < b {
				links = append(links, Link{Src: a, SrcPort: p, Dst: b, DstPort: g.adj[b][a]})
			}
		}
	}
	slices.SortFunc(links, func(x, y Link) int {
		return cmp.Or(cmp.Compare(x.Src, y.Src), cmp.Compare(x.Dst, y.Dst))
	})
	return links
}

// IsLinkPort reports whether port p of n is used by an observed link in
// either direction.
func (g *Graph) IsLinkPort(n addr.DPID, p addr.Port) bool {
	for _, l := range g.observed {
		if (l.Src == n && l.SrcPort == p) || (l.Dst == n && l.DstPort == p) {
			return true
		}
	}
	return false
}

// FloodPorts returns the ports of n that are not used by any link, i.e. the
// ports hosts can be attached to, in ascending order.
func (g *Graph) FloodPorts(n addr.DPID) []addr.Port {
	var res []addr.Port
	for _, p := range g.Ports(n) {
		if !g.IsLinkPort(n, p) {
			res = append(res, p)
		}
	}
	return res
}
