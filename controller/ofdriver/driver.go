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

// Package ofdriver connects OpenFlow 1.3 switches to the controller. It
// accepts switch connections, translates switch messages into controller
// events and encodes forwarding state requests for the switches. Links are
// discovered with LLDP probes and connections are kept alive with echo
// requests.
package ofdriver

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/sstreaming/sstreaming/controller"
	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/periodic"
	"github.com/sstreaming/sstreaming/private/topology"
	"github.com/sstreaming/sstreaming/private/worker"
)

var _ flowsync.Driver = (*Driver)(nil)

// Events receives the events derived from switch messages.
type Events interface {
	Submit(ctx context.Context, ev controller.Event) error
}

// EventsFunc is a function that implements Events.
type EventsFunc func(ctx context.Context, ev controller.Event) error

// Submit calls f(ctx, ev).
func (f EventsFunc) Submit(ctx context.Context, ev controller.Event) error {
	return f(ctx, ev)
}

// Driver is the OpenFlow switch driver.
type Driver struct {
	cfg     Config
	events  Events
	metrics Metrics
	links   *linkTracker

	mu       sync.Mutex
	listener net.Listener
	conns    map[addr.DPID]*conn
	active   map[net.Conn]struct{}
	wg       sync.WaitGroup

	workerBase worker.Base
}

// New creates a driver. cfg must be initialized.
func New(cfg Config, events Events, m Metrics) *Driver {
	return &Driver{
		cfg:     cfg,
		events:  events,
		metrics: m,
		links:   newLinkTracker(),
		conns:   make(map[addr.DPID]*conn),
		active:  make(map[net.Conn]struct{}),
	}
}

// Run listens for switch connections until Close is called or ctx is
// canceled.
func (d *Driver) Run(ctx context.Context) error {
	return d.workerBase.RunWrapper(ctx, d.setup, d.run)
}

// Close stops the driver and disconnects all switches.
func (d *Driver) Close(ctx context.Context) error {
	return d.workerBase.CloseWrapper(ctx, nil)
}

// Addr returns the listen address. It is nil before Run.
func (d *Driver) Addr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return nil
	}
	return d.listener.Addr()
}

func (d *Driver) setup(ctx context.Context) error {
	l, err := net.Listen("tcp", d.cfg.ListenAddr)
	if err != nil {
		return serrors.Wrap("listening", err, "addr", d.cfg.ListenAddr)
	}
	d.mu.Lock()
	d.listener = l
	d.mu.Unlock()
	return nil
}

func (d *Driver) run(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info("Listening for switches", "addr", d.listener.Addr())

	ctx, cancel := context.WithCancel(ctx)
	defer d.wg.Wait()
	defer cancel()
	d.wg.Add(1)
	go func() {
		defer log.HandlePanic()
		defer d.wg.Done()
		select {
		case <-d.workerBase.GetDoneChan():
		case <-ctx.Done():
		}
		cancel()
		d.listener.Close()
		d.closeAll()
	}()

	lldp := periodic.Start(lldpTask{d: d}, d.cfg.LLDPInterval.Duration,
		d.cfg.LLDPInterval.Duration)
	defer lldp.Stop()
	echo := periodic.Start(echoTask{d: d}, d.cfg.EchoInterval.Duration,
		d.cfg.EchoInterval.Duration)
	defer echo.Stop()

	for {
		nc, err := d.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return serrors.Wrap("accepting connection", err)
		}
		if !d.track(nc) {
			nc.Close()
			return nil
		}
		d.wg.Add(1)
		go func() {
			defer log.HandlePanic()
			defer d.wg.Done()
			d.serve(ctx, nc)
		}()
	}
}

// track registers a raw connection so that it is closed on shutdown. It
// returns false if the driver is shutting down.
func (d *Driver) track(nc net.Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return false
	}
	d.active[nc] = struct{}{}
	return true
}

func (d *Driver) untrack(nc net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, nc)
}

func (d *Driver) closeAll() {
	d.mu.Lock()
	active := d.active
	d.active = nil
	d.mu.Unlock()
	for nc := range active {
		nc.Close()
	}
}

func (d *Driver) serve(ctx context.Context, nc net.Conn) {
	defer d.untrack(nc)
	logger := log.FromCtx(ctx).New("remote", nc.RemoteAddr())
	dpid, ports, err := handshake(nc, d.cfg.HandshakeTimeout.Duration)
	if err != nil {
		logger.Info("Switch handshake failed", "err", err)
		nc.Close()
		return
	}
	logger = logger.New("dpid", dpid)
	ctx = log.CtxWith(ctx, logger)
	c := newConn(nc, dpid, ports, d.cfg.SendQueue)
	if old := d.register(c); old != nil {
		logger.Info("Switch reconnected, replacing connection")
		old.close()
		// The controller drops the links of the switch on the new enter,
		// they must be reported again once they are observed.
		d.links.forgetNode(dpid)
	}
	logger.Info("Switch connected", "ports", len(ports))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		c.writeLoop()
	}()
	d.submit(ctx, controller.SwitchEnter{Node: dpid, Ports: c.portList()})
	d.readLoop(ctx, c)
	c.close()
	if d.unregister(c) {
		logger.Info("Switch disconnected")
		d.links.forgetNode(dpid)
		d.submit(ctx, controller.SwitchLeave{Node: dpid})
	}
}

// register adds c and returns the connection it replaces.
func (d *Driver) register(c *conn) *conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.conns[c.dpid]
	d.conns[c.dpid] = c
	metrics.GaugeSet(d.metrics.Switches, float64(len(d.conns)))
	return old
}

// unregister removes c and reports whether it was still the current
// connection of its switch.
func (d *Driver) unregister(c *conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conns[c.dpid] != c {
		return false
	}
	delete(d.conns, c.dpid)
	metrics.GaugeSet(d.metrics.Switches, float64(len(d.conns)))
	return true
}

func (d *Driver) conn(dpid addr.DPID) *conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[dpid]
}

// connections returns the current connections ordered by datapath id.
func (d *Driver) connections() []*conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	conns := make([]*conn, 0, len(d.conns))
	for _, c := range d.conns {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].dpid < conns[j].dpid })
	return conns
}

func (d *Driver) readLoop(ctx context.Context, c *conn) {
	logger := log.FromCtx(ctx)
	for {
		msg, h, err := readMessage(c.nc)
		if err != nil {
			select {
			case <-c.closed:
			default:
				logger.Debug("Reading from switch failed", "err", err)
			}
			return
		}
		c.touch(time.Now())
		d.count(h.Type)
		switch h.Type {
		case typeEchoRequest:
			reply, err := encodeEchoReply(h.Xid)
			if err == nil {
				err = c.send(reply)
			}
			if err != nil {
				logger.Debug("Failed to answer echo request", "err", err)
			}
		case typeError:
			logger.Info("Switch reported error", "err", errorMessage(msg))
		case typePortStatus:
			d.handlePortStatus(ctx, c, msg)
		case typePacketIn:
			d.handlePacketIn(ctx, c, msg)
		}
	}
}

func (d *Driver) handlePortStatus(ctx context.Context, c *conn, msg []byte) {
	ps, err := decodePortStatus(msg)
	if err != nil {
		log.FromCtx(ctx).Info("Ignoring invalid port status", "err", err)
		return
	}
	if ps.Port == 0 || ps.Port > portMax {
		return
	}
	up := ps.Up && ps.Reason != portStatusDelete
	if !c.setPort(ps.Port, up) {
		return
	}
	if up {
		d.submit(ctx, controller.PortAdd{Node: c.dpid, Port: ps.Port})
		return
	}
	d.links.forgetPort(c.dpid, ps.Port)
	d.submit(ctx, controller.PortDelete{Node: c.dpid, Port: ps.Port})
}

func (d *Driver) handlePacketIn(ctx context.Context, c *conn, msg []byte) {
	pin, err := decodePacketIn(msg)
	if err != nil {
		log.FromCtx(ctx).Debug("Ignoring invalid packet-in", "err", err)
		return
	}
	if src, srcPort, ok := parseLLDP(pin.Data); ok {
		if src == c.dpid || d.conn(src) == nil {
			return
		}
		link := topology.Link{Src: src, SrcPort: srcPort, Dst: c.dpid, DstPort: pin.InPort}
		if d.links.observe(link, time.Now()) {
			d.submit(ctx, controller.LinkAdd{Link: link})
		}
		return
	}
	d.submit(ctx, controller.PacketIn{Node: c.dpid, InPort: pin.InPort, Data: pin.Data})
}

func (d *Driver) submit(ctx context.Context, ev controller.Event) {
	if err := d.events.Submit(ctx, ev); err != nil {
		log.FromCtx(ctx).Debug("Dropping event", "type", ev.Type(), "err", err)
	}
}

func (d *Driver) count(typ uint8) {
	if d.metrics.Messages == nil {
		return
	}
	metrics.CounterInc(d.metrics.Messages(messageName(typ)))
}

// FlowMod sends a flow modification to the switch.
func (d *Driver) FlowMod(dpid addr.DPID, m flowsync.FlowMod) error {
	b, err := encodeFlowMod(m)
	if err != nil {
		return err
	}
	return d.send(dpid, b)
}

// GroupMod sends a group modification to the switch.
func (d *Driver) GroupMod(dpid addr.DPID, m flowsync.GroupMod) error {
	b, err := encodeGroupMod(m)
	if err != nil {
		return err
	}
	return d.send(dpid, b)
}

// MeterMod sends a meter modification to the switch.
func (d *Driver) MeterMod(dpid addr.DPID, m flowsync.MeterMod) error {
	b, err := encodeMeterMod(m)
	if err != nil {
		return err
	}
	return d.send(dpid, b)
}

// PacketOut injects a frame into the switch.
func (d *Driver) PacketOut(dpid addr.DPID, p flowsync.PacketOut) error {
	b, err := encodePacketOut(p)
	if err != nil {
		return err
	}
	return d.send(dpid, b)
}

func (d *Driver) send(dpid addr.DPID, b []byte) error {
	c := d.conn(dpid)
	if c == nil {
		return serrors.Wrap("sending message", ErrNotConnected, "dpid", dpid)
	}
	return c.send(b)
}

func messageName(typ uint8) string {
	switch typ {
	case typeHello:
		return "hello"
	case typeError:
		return "error"
	case typeEchoRequest:
		return "echo_request"
	case typeEchoReply:
		return "echo_reply"
	case typePacketIn:
		return "packet_in"
	case typePortStatus:
		return "port_status"
	case typeMultipartReply:
		return "multipart_reply"
	default:
		return "other"
	}
}

// lldpTask probes every port of every switch and expires links that were
// not observed for three intervals.
type lldpTask struct {
	d *Driver
}

func (t lldpTask) Name() string {
	return "openflow_lldp"
}

func (t lldpTask) Run(ctx context.Context) {
	logger := log.FromCtx(ctx)
	deadline := time.Now().Add(-3 * t.d.cfg.LLDPInterval.Duration)
	for _, l := range t.d.links.expire(deadline) {
		logger.Debug("Link expired", "link", l)
		t.d.submit(ctx, controller.LinkDelete{Link: l})
	}
	for _, c := range t.d.connections() {
		for _, p := range c.portList() {
			if err := t.d.probe(c, p); err != nil {
				logger.Debug("Sending LLDP probe failed", "dpid", c.dpid, "port", p,
					"err", err)
			}
		}
	}
}

func (d *Driver) probe(c *conn, port addr.Port) error {
	frame, err := lldpFrame(c.dpid, port)
	if err != nil {
		return err
	}
	b, err := encodePacketOut(flowsync.PacketOut{
		InPort:  flowsync.PortController,
		Actions: []flowsync.Action{flowsync.Output(port)},
		Data:    frame,
	})
	if err != nil {
		return err
	}
	return c.send(b)
}

// echoTask sends keepalives and disconnects switches that stayed silent for
// three intervals.
type echoTask struct {
	d *Driver
}

func (t echoTask) Name() string {
	return "openflow_echo"
}

func (t echoTask) Run(ctx context.Context) {
	logger := log.FromCtx(ctx)
	deadline := time.Now().Add(-3 * t.d.cfg.EchoInterval.Duration)
	for _, c := range t.d.connections() {
		if c.idleSince().Before(deadline) {
			logger.Info("Switch unresponsive, disconnecting", "dpid", c.dpid,
				"last_seen", c.idleSince())
			c.close()
			continue
		}
		req, err := encodeEchoRequest()
		if err == nil {
			err = c.send(req)
		}
		if err != nil {
			logger.Debug("Sending echo request failed", "dpid", c.dpid, "err", err)
		}
	}
}
