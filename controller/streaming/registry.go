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

// Package streaming keeps track of the multicast streams, their clients and
// the forwarding state installed for them.
//
// Every stream is either active, i.e., its tree reaches all clients, or
// failed. A failed stream has no tree; only its source switch keeps a rule
// for it that drops the traffic. Failed streams are retried whenever the
// topology grows.
package streaming

import (
	"context"
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/linkindex"
	"github.com/sstreaming/sstreaming/controller/mcast"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
)

var (
	// ErrUnknownStream is returned for events that reference a stream that
	// is not registered.
	ErrUnknownStream = serrors.New("unknown stream")
	// ErrDuplicateStream is returned if a source registers a stream id that
	// is already in use.
	ErrDuplicateStream = serrors.New("duplicate stream")
)

// Stream states.
const (
	StateActive = "active"
	StateFailed = "failed"
)

// Topology is the view of the network the registry computes trees on. Paths
// must be up to date with the last mutation.
type Topology interface {
	Paths() topology.Paths
	OutPort(a, b addr.DPID) (addr.Port, bool)
	HasNode(n addr.DPID) bool
}

// Synchronizer installs forwarding state. *flowsync.Synchronizer implements
// it.
type Synchronizer interface {
	Sync(ctx context.Context, node addr.DPID, id addr.StreamID, prev, next flowsync.Entry)
	SyncMeter(ctx context.Context, node addr.DPID, id addr.StreamID, prevRate, nextRate uint32)
}

// Metrics are the metrics of the registry. Nil fields are ignored.
type Metrics struct {
	// Streams returns the gauge for the number of streams in state.
	Streams func(state string) metrics.Gauge
}

// Source is the origin of a stream.
type Source struct {
	MAC  addr.MAC  `json:"mac"`
	Node addr.DPID `json:"node"`
	Port addr.Port `json:"port"`
}

type port struct {
	node addr.DPID
	port addr.Port
}

type stream struct {
	id     addr.StreamID
	source Source
	// rate is the default rate of the stream, 0 uses the registry default.
	rate    uint32
	clients map[addr.DPID]map[addr.Port]struct{}
	macs    map[port]addr.MAC
	// tree is nil while the stream is failed.
	tree      mcast.Tree
	entries   map[addr.DPID]flowsync.Entry
	overrides map[addr.DPID]uint32
}

// Registry is the stream registry. It is not safe for concurrent use.
type Registry struct {
	topo        Topology
	sync        Synchronizer
	defaultRate uint32
	metrics     Metrics

	streams map[addr.StreamID]*stream
	failed  map[addr.StreamID]struct{}
	links   *linkindex.Index[addr.StreamID]
}

// New creates an empty registry. defaultRate is the rate in kbps used for
// streams that register without one.
func New(topo Topology, sync Synchronizer, defaultRate uint32, m Metrics) *Registry {
	return &Registry{
		topo:        topo,
		sync:        sync,
		defaultRate: defaultRate,
		metrics:     m,
		streams:     make(map[addr.StreamID]*stream),
		failed:      make(map[addr.StreamID]struct{}),
		links:       linkindex.New[addr.StreamID](),
	}
}

// SourceEnter registers a new stream. The source switch is pinned right
// away, the stream becomes active once its tree is computed.
func (r *Registry) SourceEnter(ctx context.Context, id addr.StreamID, src Source,
	rate uint32) error {

	if _, ok := r.streams[id]; ok {
		return serrors.JoinNoStack(ErrDuplicateStream, nil, "stream", id)
	}
	s := &stream{
		id:        id,
		source:    src,
		rate:      rate,
		clients:   make(map[addr.DPID]map[addr.Port]struct{}),
		macs:      make(map[port]addr.MAC),
		entries:   make(map[addr.DPID]flowsync.Entry),
		overrides: make(map[addr.DPID]uint32),
	}
	r.streams[id] = s
	log.FromCtx(ctx).Info("Stream source registered", "stream", id, "node", src.Node,
		"port", src.Port, "mac", src.MAC)
	r.recompute(ctx, s, mcast.Event{Kind: mcast.TopologyChanged})
	return nil
}

// SourceLeave removes the stream and all state installed for it.
func (r *Registry) SourceLeave(ctx context.Context, id addr.StreamID) error {
	s, ok := r.streams[id]
	if !ok {
		return serrors.JoinNoStack(ErrUnknownStream, nil, "stream", id)
	}
	r.apply(ctx, s, nil)
	for _, node := range slices.Sorted(maps.Keys(s.overrides)) {
		if r.topo.HasNode(node) {
			r.sync.SyncMeter(ctx, node, id, s.overrides[node], 0)
		}
	}
	r.links.Remove(id)
	delete(r.failed, id)
	delete(r.streams, id)
	r.updateMetrics()
	log.FromCtx(ctx).Info("Stream source left", "stream", id)
	return nil
}

// ClientEnter adds a client at port of node.
func (r *Registry) ClientEnter(ctx context.Context, id addr.StreamID, mac addr.MAC,
	node addr.DPID, p addr.Port) error {

	s, ok := r.streams[id]
	if !ok {
		return serrors.JoinNoStack(ErrUnknownStream, nil, "stream", id)
	}
	ports, ok := s.clients[node]
	if !ok {
		ports = make(map[addr.Port]struct{})
		s.clients[node] = ports
	}
	ports[p] = struct{}{}
	s.macs[port{node: node, port: p}] = mac
	r.recompute(ctx, s, mcast.Event{Kind: mcast.ClientEnter, Node: node})
	return nil
}

// ClientLeave removes the client at port of node. Removing a client that is
// not registered has no effect.
func (r *Registry) ClientLeave(ctx context.Context, id addr.StreamID, mac addr.MAC,
	node addr.DPID, p addr.Port) error {

	s, ok := r.streams[id]
	if !ok {
		return serrors.JoinNoStack(ErrUnknownStream, nil, "stream", id)
	}
	if _, ok := s.clients[node][p]; !ok {
		log.FromCtx(ctx).Debug("Ignoring leave of unknown client", "stream", id,
			"node", node, "port", p, "mac", mac)
		return nil
	}
	delete(s.clients[node], p)
	if len(s.clients[node]) == 0 {
		delete(s.clients, node)
	}
	delete(s.macs, port{node: node, port: p})
	r.recompute(ctx, s, mcast.Event{Kind: mcast.ClientLeave, Node: node})
	return nil
}

// BandwidthChange sets the rate limit of the stream at node. A rate of 0
// removes the limit. The tree is not affected.
func (r *Registry) BandwidthChange(ctx context.Context, id addr.StreamID, node addr.DPID,
	rate uint32) error {

	s, ok := r.streams[id]
	if !ok {
		return serrors.JoinNoStack(ErrUnknownStream, nil, "stream", id)
	}
	prev := s.overrides[node]
	if prev == rate {
		return nil
	}
	if rate == 0 {
		delete(s.overrides, node)
	} else {
		s.overrides[node] = rate
	}
	if !r.topo.HasNode(node) {
		return nil
	}
	// A deleted meter takes the flows referencing it along, so the flow is
	// removed first and installed again on top of the new meter.
	entry := s.entries[node]
	r.sync.Sync(ctx, node, id, entry, flowsync.Entry{})
	r.sync.SyncMeter(ctx, node, id, prev, rate)
	r.sync.Sync(ctx, node, id, flowsync.Entry{}, entry)
	log.FromCtx(ctx).Debug("Stream bandwidth changed", "stream", id, "node", node,
		"prev", prev, "rate", rate)
	return nil
}

// SwitchEntered restores the meters of node and retries the failed streams.
// The switch is expected to be in its bootstrap state.
func (r *Registry) SwitchEntered(ctx context.Context, node addr.DPID) {
	for _, id := range r.ids() {
		s := r.streams[id]
		if rate, ok := s.overrides[node]; ok {
			r.sync.SyncMeter(ctx, node, id, 0, rate)
		}
	}
	r.RetryFailed(ctx)
}

// SwitchLeft forgets the state installed on node and recomputes the streams
// that used it. links are the links removed together with the switch.
func (r *Registry) SwitchLeft(ctx context.Context, node addr.DPID, links []topology.LinkKey) {
	affected := make(map[addr.StreamID]struct{})
	for _, id := range r.links.Users(links...) {
		affected[id] = struct{}{}
	}
	for id, s := range r.streams {
		if _, ok := s.entries[node]; ok || s.source.Node == node {
			affected[id] = struct{}{}
		}
		delete(s.entries, node)
	}
	r.recomputeAll(ctx, slices.Sorted(maps.Keys(affected)))
}

// LinksRemoved recomputes the streams whose tree used any of links.
func (r *Registry) LinksRemoved(ctx context.Context, links ...topology.LinkKey) {
	r.recomputeAll(ctx, r.links.Users(links...))
}

// RetryFailed recomputes all failed streams.
func (r *Registry) RetryFailed(ctx context.Context) {
	r.recomputeAll(ctx, slices.Sorted(maps.Keys(r.failed)))
}

func (r *Registry) recomputeAll(ctx context.Context, ids []addr.StreamID) {
	for _, id := range ids {
		if s, ok := r.streams[id]; ok {
			r.recompute(ctx, s, mcast.Event{Kind: mcast.TopologyChanged})
		}
	}
}

// recompute brings the tree and the installed state of s in line with the
// current clients and topology.
func (r *Registry) recompute(ctx context.Context, s *stream, ev mcast.Event) {
	logger := log.FromCtx(ctx).New("stream", s.id)
	in := mcast.Input{Source: s.source.Node, Clients: s.clients, Tree: s.tree}
	tree, changed, ok := mcast.ComputeTree(in, ev, r.topo.Paths())
	var next map[addr.DPID]flowsync.Entry
	if ok {
		var err error
		if next, err = mcast.Flows(tree, s.source.Port, s.clients, r.topo.OutPort); err != nil {
			logger.Error("Deriving stream flows failed", "err", err)
			ok = false
		}
	}
	if ok {
		if err := mcast.Validate(tree, s.source.Node, s.clients); err != nil {
			logger.Error("Computed tree is invalid", "err", err)
		}
		r.apply(ctx, s, next)
		s.tree = tree
		r.links.Set(s.id, tree.Links())
		if _, wasFailed := r.failed[s.id]; wasFailed {
			delete(r.failed, s.id)
			logger.Info("Stream recovered", "nodes", len(tree))
		}
		if logger.Enabled(log.DebugLevel) {
			logger.Debug("Stream tree updated", "event", ev.Kind,
				"changed", slices.Sorted(maps.Keys(changed)), "nodes", tree.Nodes())
		}
		r.updateMetrics()
		return
	}

	next = make(map[addr.DPID]flowsync.Entry, 1)
	if r.topo.HasNode(s.source.Node) {
		next[s.source.Node] = flowsync.NewEntry(s.source.Port)
	}
	r.apply(ctx, s, next)
	s.tree = nil
	r.links.Remove(s.id)
	if _, wasFailed := r.failed[s.id]; !wasFailed {
		r.failed[s.id] = struct{}{}
		logger.Info("Stream failed, not all clients reachable", "event", ev.Kind,
			"clients", len(s.clients))
	}
	r.updateMetrics()
}

// apply syncs every node whose entry differs between the installed state and
// next, and records next as installed.
func (r *Registry) apply(ctx context.Context, s *stream, next map[addr.DPID]flowsync.Entry) {
	nodes := make(map[addr.DPID]struct{}, len(s.entries)+len(next))
	for n := range s.entries {
		nodes[n] = struct{}{}
	}
	for n := range next {
		nodes[n] = struct{}{}
	}
	installed := make(map[addr.DPID]flowsync.Entry, len(next))
	for _, n := range slices.Sorted(maps.Keys(nodes)) {
		prev, nxt := s.entries[n], next[n]
		if !prev.Equal(nxt) {
			r.sync.Sync(ctx, n, s.id, prev, nxt)
		}
		if !nxt.Empty() {
			installed[n] = nxt
		}
	}
	s.entries = installed
}

func (r *Registry) ids() []addr.StreamID {
	return slices.Sorted(maps.Keys(r.streams))
}

func (r *Registry) updateMetrics() {
	if r.metrics.Streams == nil {
		return
	}
	metrics.GaugeSet(r.metrics.Streams(StateActive), float64(len(r.streams)-len(r.failed)))
	metrics.GaugeSet(r.metrics.Streams(StateFailed), float64(len(r.failed)))
}
