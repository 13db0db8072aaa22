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

// Package multipath computes the forwarding hops of unicast flows over all
// equal-cost shortest paths between two switches.
package multipath

import (
	"slices"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// ErrUnreachable indicates that there is no path between the switches.
var ErrUnreachable = serrors.New("destination unreachable")

// Graph is the part of the topology the computation needs.
type Graph interface {
	AllShortestPaths(a, b addr.DPID) [][]addr.DPID
	OutPort(a, b addr.DPID) (addr.Port, bool)
}

// Result is the outcome of a path computation.
type Result struct {
	// Paths are the shortest paths used, each from source to destination.
	Paths [][]addr.DPID
	// Hops holds the output ports of every switch on the paths except the
	// destination, sorted ascending. A switch with more than one port spreads
	// the flow over all of them.
	Hops map[addr.DPID][]addr.Port
}

type options struct {
	singlePath bool
}

// Option configures Compute.
type Option func(*options)

// WithSinglePath restricts the result to the first shortest path.
func WithSinglePath(single bool) Option {
	return func(o *options) {
		o.singlePath = single
	}
}

// Compute aggregates the output ports of all shortest paths from src to dst.
// If src and dst are the same switch, the result has no hops.
func Compute(src, dst addr.DPID, g Graph, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if src == dst {
		return Result{
			Paths: [][]addr.DPID{{src}},
			Hops:  map[addr.DPID][]addr.Port{},
		}, nil
	}
	paths := g.AllShortestPaths(src, dst)
	if len(paths) == 0 {
		return Result{}, serrors.JoinNoStack(ErrUnreachable, nil, "src", src, "dst", dst)
	}
	if o.singlePath {
		paths = paths[:1]
	}
	hops := make(map[addr.DPID][]addr.Port)
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			p, ok := g.OutPort(path[i], path[i+1])
			if !ok {
				return Result{}, serrors.New("no port for hop",
					"from", path[i], "to", path[i+1])
			}
			if !slices.Contains(hops[path[i]], p) {
				hops[path[i]] = append(hops[path[i]], p)
			}
		}
	}
	for _, ports := range hops {
		slices.Sort(ports)
	}
	return Result{Paths: paths, Hops: hops}, nil
}
