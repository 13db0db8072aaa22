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

package topology

import (
	"slices"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Paths is an all-pairs shortest path table. It is an immutable snapshot of
// the graph at the time it was computed.
type Paths struct {
	paths map[addr.DPID]map[addr.DPID][]addr.DPID
}

// Path returns one shortest path from a to b including both end points, or
// nil if b is not reachable from a. The path from a node to itself is the
// node alone.
func (p Paths) Path(a, b addr.DPID) []addr.DPID {
	return p.paths[a][b]
}

// Len returns the length of the shortest path from a to b counted in nodes.
func (p Paths) Len(a, b addr.DPID) (int, bool) {
	path, ok := p.paths[a][b]
	return len(path), ok
}

// Reachable reports whether b can be reached from a.
func (p Paths) Reachable(a, b addr.DPID) bool {
	_, ok := p.paths[a][b]
	return ok
}

// ShortestPaths recomputes the all-pairs shortest paths of the current graph
// with a breadth first search from every node. Neighbours are visited in
// ascending DPID order, so the chosen path between two nodes only depends on
// the graph. The result is also kept and returned by Paths.
func (g *Graph) ShortestPaths() Paths {
	res := Paths{paths: make(map[addr.DPID]map[addr.DPID][]addr.DPID, len(g.ports))}
	for _, src := range g.Nodes() {
		parent := g.bfs(src)
		row := make(map[addr.DPID][]addr.DPID, len(parent))
		for dst := range parent {
			row[dst] = walkBack(parent, src, dst)
		}
		res.paths[src] = row
	}
	g.paths = res
	return res
}

// Paths returns the table computed by the last call to ShortestPaths.
func (g *Graph) Paths() Paths {
	return g.paths
}

// bfs returns the BFS parent of every node reachable from src. src is its
// own parent.
func (g *Graph) bfs(src addr.DPID) map[addr.DPID]addr.DPID {
	parent := map[addr.DPID]addr.DPID{src: src}
	queue := []addr.DPID{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(n) {
			if _, seen := parent[nb]; seen {
				continue
			}
			parent[nb] = n
			queue = append(queue, nb)
		}
	}
	return parent
}

func walkBack(parent map[addr.DPID]addr.DPID, src, dst addr.DPID) []addr.DPID {
	var rev []addr.DPID
	for n := dst; n != src; n = parent[n] {
		rev = append(rev, n)
	}
	rev = append(rev, src)
	path := make([]addr.DPID, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

// AllShortestPaths returns every shortest path from a to b, each including
// both end points. The result is nil if b is unreachable. Paths are ordered
// lexicographically by DPID. Results are cached until the next mutation.
func (g *Graph) AllShortestPaths(a, b addr.DPID) [][]addr.DPID {
	key := pair{a, b}
	if cached, ok := g.allPaths.Get(key); ok {
		return cached
	}
	if !g.HasNode(a) || !g.HasNode(b) {
		return nil
	}
	// Hop distance towards b. Links are symmetric, so a BFS from b suffices.
	dist := map[addr.DPID]int{b: 0}
	queue := []addr.DPID{b}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(n) {
			if _, seen := dist[nb]; !seen {
				dist[nb] = dist[n] + 1
				queue = append(queue, nb)
			}
		}
	}
	var res [][]addr.DPID
	if _, ok := dist[a]; ok {
		var walk func(path []addr.DPID)
		walk = func(path []addr.DPID) {
			n := path[len(path)-1]
			if n == b {
				res = append(res, slices.Clone(path))
				return
			}
			for _, nb := range g.Neighbors(n) {
				if d, ok := dist[nb]; ok && d == dist[n]-1 {
					walk(append(path, nb))
				}
			}
		}
		walk([]addr.DPID{a})
	}
	g.allPaths.Add(key, res)
	return res
}
