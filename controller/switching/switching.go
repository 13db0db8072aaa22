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

// Package switching forwards unicast traffic between the known hosts. Flows
// are installed on demand when a switch hands a frame for a known host to the
// controller, and torn down when a link they ride on disappears.
package switching

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/hosts"
	"github.com/sstreaming/sstreaming/controller/linkindex"
	"github.com/sstreaming/sstreaming/controller/multipath"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
)

const (
	// DefaultIdleTimeout is the idle timeout of installed flows.
	DefaultIdleTimeout = 300 * time.Second
	// DefaultSuppressWindow is the time after an installation during which
	// further requests for the same flow at the same switch are not acted on.
	DefaultSuppressWindow = time.Second

	maxIdleTimeout = time.Duration(1<<16-1) * time.Second
)

// ErrUnknownHost is returned if the destination of a frame is not a known
// host.
var ErrUnknownHost = serrors.New("unknown host")

// Topology is the view of the network flows are computed on.
type Topology interface {
	multipath.Graph
	HasNode(n addr.DPID) bool
}

// Installer installs unicast state. *flowsync.Synchronizer implements it.
type Installer interface {
	InstallUnicast(ctx context.Context, node addr.DPID, flow addr.FlowID, ethDst addr.MAC,
		ports []addr.Port, idleTimeout uint16) flowsync.Installed
	RemoveUnicast(ctx context.Context, inst flowsync.Installed)
	PacketOut(ctx context.Context, node addr.DPID, port addr.Port, data []byte)
}

// Hosts resolves destination MACs. *hosts.Registry implements it.
type Hosts interface {
	ByMAC(mac addr.MAC) (hosts.Host, bool)
}

// Config configures the switching module.
type Config struct {
	// Multipath spreads flows over all equal-cost shortest paths.
	Multipath bool
	// IdleTimeout of the installed flows. It is truncated to seconds.
	IdleTimeout time.Duration
	// SuppressWindow is the window in which repeated requests are ignored.
	SuppressWindow time.Duration
}

// InitDefaults sets unset fields to their defaults.
func (c *Config) InitDefaults() {
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SuppressWindow == 0 {
		c.SuppressWindow = DefaultSuppressWindow
	}
}

// Metrics are the metrics of the switching module. Nil fields are ignored.
type Metrics struct {
	// Flows is the number of unicast flows currently installed.
	Flows metrics.Gauge
}

// Flow describes an installed unicast flow.
type Flow struct {
	ID     addr.FlowID          `json:"id"`
	EthDst addr.MAC             `json:"eth_dst"`
	Hops   []flowsync.Installed `json:"hops"`
	Links  []topology.LinkKey   `json:"links"`
}

// Switching installs unicast flows. It is not safe for concurrent use.
type Switching struct {
	topo      Topology
	installer Installer
	hosts     Hosts
	cfg       Config
	metrics   Metrics

	// flows holds the installed state of every flow by node.
	flows  map[addr.FlowID]map[addr.DPID]flowsync.Installed
	dsts   map[addr.FlowID]addr.MAC
	links  *linkindex.Index[addr.FlowID]
	recent *cache.Cache
}

// New creates the switching module.
func New(topo Topology, installer Installer, h Hosts, cfg Config, m Metrics) *Switching {
	cfg.InitDefaults()
	return &Switching{
		topo:      topo,
		installer: installer,
		hosts:     h,
		cfg:       cfg,
		metrics:   m,
		flows:     make(map[addr.FlowID]map[addr.DPID]flowsync.Installed),
		dsts:      make(map[addr.FlowID]addr.MAC),
		links:     linkindex.New[addr.FlowID](),
		// Expired entries are only evicted on access, no janitor is started.
		recent: cache.New(cfg.SuppressWindow, 0),
	}
}

// Handle forwards the frame data that node received on inPort towards the
// host with address dst, and installs the flow for dst along the way.
func (s *Switching) Handle(ctx context.Context, node addr.DPID, inPort addr.Port, dst addr.MAC,
	data []byte) error {

	logger := log.FromCtx(ctx)
	host, ok := s.hosts.ByMAC(dst)
	if !ok {
		return serrors.JoinNoStack(ErrUnknownHost, nil, "mac", dst)
	}
	flow := addr.FlowIDFor(dst)
	key := suppressKey(flow, node)
	if _, recent := s.recent.Get(key); !recent {
		res, err := multipath.Compute(node, host.Node, s.topo,
			multipath.WithSinglePath(!s.cfg.Multipath))
		if err != nil {
			return serrors.Wrap("computing unicast path", err, "flow", flow, "dst", dst)
		}
		hops := maps.Clone(res.Hops)
		hops[host.Node] = []addr.Port{host.Port}
		s.install(ctx, flow, dst, hops, res.Paths, node)
		s.recent.SetDefault(key, struct{}{})
		logger.Debug("Unicast flow installed", "flow", flow, "dst", dst, "from", node,
			"to", host.Node, "paths", len(res.Paths))
	} else {
		logger.Debug("Unicast flow recently installed", "flow", flow, "dst", dst, "node", node)
	}
	if node == host.Node && inPort == host.Port {
		return nil
	}
	s.installer.PacketOut(ctx, host.Node, host.Port, data)
	return nil
}

// install brings the state of flow at the nodes in hops in line with hops.
// State of the flow at other nodes is kept; it serves requests from other
// switches towards the same destination. The state at requester is always
// reinstalled: a frame for dst only reaches the controller from there if the
// switch has no entry for it anymore, e.g., after an idle timeout.
func (s *Switching) install(ctx context.Context, flow addr.FlowID, dst addr.MAC,
	hops map[addr.DPID][]addr.Port, paths [][]addr.DPID, requester addr.DPID) {

	installed, ok := s.flows[flow]
	if !ok {
		installed = make(map[addr.DPID]flowsync.Installed)
		s.flows[flow] = installed
	}
	s.dsts[flow] = dst
	for _, node := range slices.Sorted(maps.Keys(hops)) {
		ports := flowsync.NewEntry(0, hops[node]...).Out
		if prev, ok := installed[node]; ok {
			if node != requester && slices.Equal(prev.Ports, ports) {
				continue
			}
			s.installer.RemoveUnicast(ctx, prev)
		}
		installed[node] = s.installer.InstallUnicast(ctx, node, flow, dst, ports,
			s.idleTimeout())
	}
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			s.links.Add(flow, topology.NewLinkKey(path[i], path[i+1]))
		}
	}
	s.updateMetrics()
}

// LinksRemoved tears down the flows riding on any of links.
func (s *Switching) LinksRemoved(ctx context.Context, links ...topology.LinkKey) {
	for _, flow := range s.links.Users(links...) {
		s.remove(ctx, flow, 0, false)
	}
	s.updateMetrics()
}

// SwitchLeft tears down the flows that used node. links are the links removed
// together with the switch, lost are the hosts that were attached to it.
func (s *Switching) SwitchLeft(ctx context.Context, node addr.DPID, links []topology.LinkKey,
	lost []hosts.Host) {

	affected := make(map[addr.FlowID]struct{})
	for _, flow := range s.links.Users(links...) {
		affected[flow] = struct{}{}
	}
	for flow, installed := range s.flows {
		if _, ok := installed[node]; ok {
			affected[flow] = struct{}{}
		}
	}
	for _, h := range lost {
		if _, ok := s.flows[addr.FlowIDFor(h.MAC)]; ok {
			affected[addr.FlowIDFor(h.MAC)] = struct{}{}
		}
	}
	for _, flow := range slices.Sorted(maps.Keys(affected)) {
		s.remove(ctx, flow, node, true)
	}
	s.updateMetrics()
}

// HostLost tears down the flow towards h, e.g., because the host moved or its
// port went down.
func (s *Switching) HostLost(ctx context.Context, h hosts.Host) {
	flow := addr.FlowIDFor(h.MAC)
	if _, ok := s.flows[flow]; !ok {
		return
	}
	s.remove(ctx, flow, 0, false)
	s.updateMetrics()
}

// remove deletes all state of flow. If skipGone is set, node is no longer
// connected and its state is dropped without contacting it.
func (s *Switching) remove(ctx context.Context, flow addr.FlowID, gone addr.DPID,
	skipGone bool) {

	installed := s.flows[flow]
	for _, node := range slices.Sorted(maps.Keys(installed)) {
		if (skipGone && node == gone) || !s.topo.HasNode(node) {
			continue
		}
		s.installer.RemoveUnicast(ctx, installed[node])
	}
	for node := range installed {
		s.recent.Delete(suppressKey(flow, node))
	}
	log.FromCtx(ctx).Debug("Unicast flow removed", "flow", flow, "dst", s.dsts[flow],
		"nodes", len(installed))
	s.links.Remove(flow)
	delete(s.flows, flow)
	delete(s.dsts, flow)
}

// Flows returns the installed flows sorted by id.
func (s *Switching) Flows() []Flow {
	flows := make([]Flow, 0, len(s.flows))
	for _, id := range slices.Sorted(maps.Keys(s.flows)) {
		installed := s.flows[id]
		f := Flow{
			ID:     id,
			EthDst: s.dsts[id],
			Hops:   make([]flowsync.Installed, 0, len(installed)),
			Links:  s.links.Links(id),
		}
		for _, node := range slices.Sorted(maps.Keys(installed)) {
			f.Hops = append(f.Hops, installed[node])
		}
		flows = append(flows, f)
	}
	return flows
}

func (s *Switching) idleTimeout() uint16 {
	return uint16(min(s.cfg.IdleTimeout, maxIdleTimeout) / time.Second)
}

func (s *Switching) updateMetrics() {
	metrics.GaugeSet(s.metrics.Flows, float64(len(s.flows)))
}

func suppressKey(flow addr.FlowID, node addr.DPID) string {
	return flow.String() + "@" + node.String()
}
