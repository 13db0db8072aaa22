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
	"errors"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/controller/hosts"
	"github.com/sstreaming/sstreaming/controller/multipath"
	"github.com/sstreaming/sstreaming/controller/packetin"
	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/prom"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
)

// DefaultRate is the stream rate in kbps used if none is configured.
const DefaultRate = 1000

// Config configures the controller state.
type Config struct {
	// DefaultRate is the rate of streams that register without one.
	DefaultRate uint32
	Switching   switching.Config
}

// State is the complete state of the controller. It is owned by the event
// loop and not safe for concurrent use.
type State struct {
	graph      *topology.Graph
	hosts      *hosts.Registry
	sync       *flowsync.Synchronizer
	streams    *streaming.Registry
	switching  *switching.Switching
	discoverer *hosts.Discoverer
}

// NewState creates the state of a controller without any switches. Requests
// to the switches are sent through driver.
func NewState(driver flowsync.Driver, cfg Config, m Metrics) *State {
	if cfg.DefaultRate == 0 {
		cfg.DefaultRate = DefaultRate
	}
	s := &State{
		graph: topology.New(),
		hosts: hosts.New(),
	}
	s.sync = &flowsync.Synchronizer{
		Driver:  driver,
		Hosts:   s.hosts,
		Metrics: flowsync.Metrics{Requests: m.DriverRequests},
	}
	s.streams = streaming.New(s.graph, s.sync, cfg.DefaultRate,
		streaming.Metrics{Streams: m.Streams})
	s.switching = switching.New(s.graph, s.sync, s.hosts, cfg.Switching,
		switching.Metrics{Flows: m.UnicastFlows})
	s.discoverer = &hosts.Discoverer{Topology: s.graph, Sender: s.sync}
	return s
}

// Handle processes a single event to completion.
func (s *State) Handle(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case SwitchEnter:
		s.switchEnter(ctx, ev)
	case SwitchLeave:
		s.switchLeave(ctx, ev.Node)
	case PortAdd:
		if !s.graph.HasNode(ev.Node) {
			return serrors.New("port of unknown switch", "node", ev.Node, "port", ev.Port)
		}
		s.graph.AddPort(ev.Node, ev.Port)
	case PortDelete:
		s.portDelete(ctx, ev)
	case LinkAdd:
		s.linkAdd(ctx, ev.Link)
	case LinkDelete:
		s.linkDelete(ctx, ev.Link)
	case PacketIn:
		return s.packetIn(ctx, ev)
	case SourceEnter:
		return s.streams.SourceEnter(ctx, ev.Stream, ev.Source, ev.Rate)
	case SourceLeave:
		return s.streams.SourceLeave(ctx, ev.Stream)
	case ClientEnter:
		return s.streams.ClientEnter(ctx, ev.Stream, ev.MAC, ev.Node, ev.Port)
	case ClientLeave:
		return s.streams.ClientLeave(ctx, ev.Stream, ev.MAC, ev.Node, ev.Port)
	case BandwidthChange:
		return s.streams.BandwidthChange(ctx, ev.Stream, ev.Node, ev.Rate)
	case query:
		return ev.fn(ctx, s)
	default:
		return serrors.New("unsupported event", "type", ev.Type())
	}
	return nil
}

func (s *State) switchEnter(ctx context.Context, ev SwitchEnter) {
	if s.graph.HasNode(ev.Node) {
		// The connection was replaced without the old one being reported
		// as lost.
		s.switchLeave(ctx, ev.Node)
	}
	s.graph.AddNode(ev.Node, ev.Ports...)
	s.graph.ShortestPaths()
	s.sync.InstallDefaults(ctx, ev.Node)
	log.FromCtx(ctx).Info("Switch entered", "node", ev.Node, "ports", len(ev.Ports))
	s.streams.SwitchEntered(ctx, ev.Node)
}

func (s *State) switchLeave(ctx context.Context, node addr.DPID) {
	if !s.graph.HasNode(node) {
		return
	}
	links := s.graph.RemoveNode(node)
	s.graph.ShortestPaths()
	s.sync.Forget(node)
	lost := s.hosts.ForgetNode(node)
	log.FromCtx(ctx).Info("Switch left", "node", node, "links", len(links),
		"hosts", len(lost))
	s.streams.SwitchLeft(ctx, node, links)
	s.switching.SwitchLeft(ctx, node, links, lost)
}

func (s *State) portDelete(ctx context.Context, ev PortDelete) {
	links := s.graph.RemovePort(ev.Node, ev.Port)
	if h, ok := s.hosts.ForgetPort(ev.Node, ev.Port); ok {
		log.FromCtx(ctx).Debug("Host lost", "mac", h.MAC, "node", ev.Node, "port", ev.Port)
		s.switching.HostLost(ctx, h)
	}
	if len(links) == 0 {
		return
	}
	s.graph.ShortestPaths()
	s.streams.LinksRemoved(ctx, links...)
	s.switching.LinksRemoved(ctx, links...)
}

func (s *State) linkAdd(ctx context.Context, l topology.Link) {
	if !s.graph.AddLink(l) {
		return
	}
	s.graph.ShortestPaths()
	log.FromCtx(ctx).Info("Link added", "link", l.Key(), "src_port", l.SrcPort,
		"dst_port", l.DstPort)
	s.streams.RetryFailed(ctx)
}

func (s *State) linkDelete(ctx context.Context, l topology.Link) {
	if !s.graph.RemoveEdge(l.Src, l.Dst) {
		return
	}
	s.graph.ShortestPaths()
	log.FromCtx(ctx).Info("Link removed", "link", l.Key())
	s.streams.LinksRemoved(ctx, l.Key())
	s.switching.LinksRemoved(ctx, l.Key())
}

func (s *State) packetIn(ctx context.Context, ev PacketIn) error {
	if !s.graph.HasNode(ev.Node) {
		return serrors.New("packet from unknown switch", "node", ev.Node)
	}
	pkt, err := packetin.Classify(ev.Data)
	if err != nil {
		return serrors.Wrap("classifying packet", err, "node", ev.Node, "in_port", ev.InPort)
	}
	logger := log.FromCtx(ctx)
	if pkt.Learnable() && !s.graph.IsLinkPort(ev.Node, ev.InPort) {
		s.learn(ctx, hosts.Host{MAC: pkt.Src, IP: pkt.SrcIP, Node: ev.Node, Port: ev.InPort})
	}
	switch pkt.Kind {
	case packetin.KindStream:
		s.streams.CheckIngress(ctx, pkt.Stream, ev.Node, ev.InPort)
	case packetin.KindUnicast:
		err := s.switching.Handle(ctx, ev.Node, ev.InPort, pkt.Dst, ev.Data)
		if errors.Is(err, switching.ErrUnknownHost) {
			logger.Debug("Destination not discovered", "dst", pkt.Dst, "node", ev.Node)
			return nil
		}
		return err
	default:
		if logger.Enabled(log.DebugLevel) {
			logger.Debug("Ignoring packet", "kind", pkt.Kind, "node", ev.Node,
				"in_port", ev.InPort, "src", pkt.Src, "dst", pkt.Dst)
		}
	}
	return nil
}

func (s *State) learn(ctx context.Context, h hosts.Host) {
	old, known := s.hosts.ByMAC(h.MAC)
	if !s.hosts.Learn(h) {
		return
	}
	log.FromCtx(ctx).Debug("Host learned", "mac", h.MAC, "ip", h.IP, "node", h.Node,
		"port", h.Port)
	if known && (old.Node != h.Node || old.Port != h.Port) {
		s.switching.HostLost(ctx, old)
	}
}

// resultOf classifies the outcome of an event for metrics.
func resultOf(err error) string {
	switch {
	case err == nil:
		return prom.Success
	case errors.Is(err, streaming.ErrUnknownStream),
		errors.Is(err, switching.ErrUnknownHost),
		errors.Is(err, multipath.ErrUnreachable):
		return prom.ErrNotFound
	case errors.Is(err, streaming.ErrDuplicateStream):
		return prom.ErrInvalidReq
	default:
		return prom.ErrInternal
	}
}
