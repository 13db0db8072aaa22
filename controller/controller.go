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

// Package controller implements the core of the SDN controller. All inputs,
// i.e., switch and link events, frames sent to the controller, stream
// lifecycle requests and queries, are serialized through a single event loop
// that owns the complete State. Every event is processed to completion,
// including the requests it causes to the switches, before the next one is
// taken from the queue.
package controller

import (
	"context"
	"runtime/debug"

	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/metrics"
	"github.com/sstreaming/sstreaming/pkg/private/prom"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
	"github.com/sstreaming/sstreaming/private/worker"
)

// DefaultQueueSize is the capacity of the event queue.
const DefaultQueueSize = 1024

// ErrStopped is returned for events submitted to a controller that is not
// running anymore.
var ErrStopped = serrors.New("controller stopped")

type envelope struct {
	ev Event
	// reply, if set, receives the result of the event.
	reply chan error
}

// Controller runs the event loop.
type Controller struct {
	state   *State
	metrics Metrics
	queue   chan envelope

	workerBase worker.Base
}

// New creates a controller for state. A queueSize of 0 selects
// DefaultQueueSize.
func New(state *State, queueSize int, m Metrics) *Controller {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Controller{
		state:   state,
		metrics: m,
		queue:   make(chan envelope, queueSize),
	}
}

// Run processes events until Close is called or ctx is canceled. It must
// only be called once.
func (c *Controller) Run(ctx context.Context) error {
	return c.workerBase.RunWrapper(ctx, nil, c.run)
}

// Close stops the event loop. Events still queued are dropped.
func (c *Controller) Close(ctx context.Context) error {
	return c.workerBase.CloseWrapper(ctx, nil)
}

func (c *Controller) run(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info("Controller event loop started")
	defer logger.Info("Controller event loop stopped")
	done := c.workerBase.GetDoneChan()
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		case env := <-c.queue:
			err := c.safeHandle(ctx, env.ev)
			if env.reply != nil {
				env.reply <- err
				continue
			}
			if err != nil {
				if _, ok := env.ev.(PacketIn); ok {
					logger.Debug("Packet dropped", "err", err)
				} else {
					logger.Info("Event dropped", "type", env.ev.Type(), "err", err)
				}
			}
		}
	}
}

// safeHandle handles ev and turns a panic of the handler into an error.
func (c *Controller) safeHandle(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error("Event handler panicked", "type", ev.Type(),
				"panic", r, "stack", string(debug.Stack()))
			metrics.CounterInc(c.metrics.Panics)
			c.count(ev, prom.ErrPanic)
			err = serrors.New("event handler panicked", "type", ev.Type(), "panic", r)
		}
	}()
	err = c.state.Handle(ctx, ev)
	c.count(ev, resultOf(err))
	return err
}

func (c *Controller) count(ev Event, result string) {
	if c.metrics.Events == nil {
		return
	}
	if _, ok := ev.(query); ok {
		return
	}
	metrics.CounterInc(c.metrics.Events(ev.Type(), result))
}

// Submit queues ev without waiting for it to be processed. It blocks while
// the queue is full.
func (c *Controller) Submit(ctx context.Context, ev Event) error {
	return c.enqueue(ctx, envelope{ev: ev})
}

// Do queues ev and waits for the result of its processing.
func (c *Controller) Do(ctx context.Context, ev Event) error {
	env := envelope{ev: ev, reply: make(chan error, 1)}
	if err := c.enqueue(ctx, env); err != nil {
		return err
	}
	select {
	case err := <-env.reply:
		return err
	case <-c.workerBase.GetDoneChan():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) enqueue(ctx context.Context, env envelope) error {
	done := c.workerBase.GetDoneChan()
	select {
	case <-done:
		return ErrStopped
	default:
	}
	select {
	case c.queue <- env:
		return nil
	case <-done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) query(ctx context.Context, name string,
	fn func(context.Context, *State) error) error {

	return c.Do(ctx, query{name: name, fn: fn})
}

// SourceEnter registers the stream id with its source.
func (c *Controller) SourceEnter(ctx context.Context, id addr.StreamID, src streaming.Source,
	rate uint32) error {

	return c.Do(ctx, SourceEnter{Stream: id, Source: src, Rate: rate})
}

// SourceLeave removes the stream id.
func (c *Controller) SourceLeave(ctx context.Context, id addr.StreamID) error {
	return c.Do(ctx, SourceLeave{Stream: id})
}

// ClientEnter subscribes a client to the stream id.
func (c *Controller) ClientEnter(ctx context.Context, id addr.StreamID, mac addr.MAC,
	node addr.DPID, port addr.Port) error {

	return c.Do(ctx, ClientEnter{Stream: id, MAC: mac, Node: node, Port: port})
}

// ClientLeave unsubscribes a client from the stream id.
func (c *Controller) ClientLeave(ctx context.Context, id addr.StreamID, mac addr.MAC,
	node addr.DPID, port addr.Port) error {

	return c.Do(ctx, ClientLeave{Stream: id, MAC: mac, Node: node, Port: port})
}

// BandwidthChange sets the rate limit of the stream id at node.
func (c *Controller) BandwidthChange(ctx context.Context, id addr.StreamID, node addr.DPID,
	rate uint32) error {

	return c.Do(ctx, BandwidthChange{Stream: id, Node: node, Rate: rate})
}

// Nodes returns a snapshot of the switches.
func (c *Controller) Nodes(ctx context.Context) ([]Node, error) {
	var res []Node
	if err := c.query(ctx, "nodes", func(_ context.Context, s *State) error {
		res = s.Nodes()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Links returns a snapshot of the links.
func (c *Controller) Links(ctx context.Context) ([]topology.Link, error) {
	var res []topology.Link
	if err := c.query(ctx, "links", func(_ context.Context, s *State) error {
		res = s.Links()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Hosts returns a snapshot of the hosts.
func (c *Controller) Hosts(ctx context.Context) ([]Host, error) {
	var res []Host
	if err := c.query(ctx, "hosts", func(_ context.Context, s *State) error {
		res = s.Hosts()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Streams returns a snapshot of the streams.
func (c *Controller) Streams(ctx context.Context) ([]streaming.Info, error) {
	var res []streaming.Info
	if err := c.query(ctx, "streams", func(_ context.Context, s *State) error {
		res = s.Streams()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// FailedStreams returns the ids of the failed streams.
func (c *Controller) FailedStreams(ctx context.Context) ([]addr.StreamID, error) {
	var res []addr.StreamID
	if err := c.query(ctx, "failed_streams", func(_ context.Context, s *State) error {
		res = s.FailedStreams()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Flows returns a snapshot of the unicast flows.
func (c *Controller) Flows(ctx context.Context) ([]switching.Flow, error) {
	var res []switching.Flow
	if err := c.query(ctx, "flows", func(_ context.Context, s *State) error {
		res = s.Flows()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// TriggerHostDiscovery sends host discovery probes. It returns the number of
// probes sent.
func (c *Controller) TriggerHostDiscovery(ctx context.Context) (int, error) {
	var sent int
	if err := c.query(ctx, "host_discovery", func(ctx context.Context, s *State) error {
		var err error
		sent, err = s.DiscoverHosts(ctx)
		return err
	}); err != nil {
		return 0, err
	}
	return sent, nil
}
