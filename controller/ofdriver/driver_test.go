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

package ofdriver

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/controller"
	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log/testlog"
	"github.com/sstreaming/sstreaming/pkg/private/util"
	"github.com/sstreaming/sstreaming/private/topology"
)

type eventSink chan controller.Event

func (s eventSink) Submit(ctx context.Context, ev controller.Event) error {
	select {
	case s <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s eventSink) next(t *testing.T) controller.Event {
	t.Helper()
	select {
	case ev := <-s:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
		return nil
	}
}

// fakeSwitch is the switch side of an OpenFlow connection.
type fakeSwitch struct {
	t  *testing.T
	nc net.Conn
}

func dialSwitch(t *testing.T, a net.Addr, dpid addr.DPID, ports ...uint32) *fakeSwitch {
	t.Helper()
	nc, err := net.Dial("tcp", a.String())
	require.NoError(t, err)
	require.NoError(t, nc.SetDeadline(time.Now().Add(5*time.Second)))
	s := &fakeSwitch{t: t, nc: nc}

	s.expect(typeHello)
	s.write(ofMessage(typeHello, 0, nil))
	_, h := s.expect(typeFeaturesRequest)
	features := make([]byte, 24)
	binary.BigEndian.PutUint64(features[0:8], uint64(dpid))
	s.write(ofMessage(typeFeaturesReply, h.Xid, features))
	s.expect(typeMultipartRequest)
	var desc [][]byte
	for _, p := range ports {
		desc = append(desc, ofpPort(p, false))
	}
	s.write(portDescReply(false, desc...))
	return s
}

// expect reads until a message of type typ arrives.
func (s *fakeSwitch) expect(typ uint8) ([]byte, header) {
	s.t.Helper()
	for {
		msg, h, err := readMessage(s.nc)
		require.NoError(s.t, err)
		if h.Type == typ {
			return msg, h
		}
	}
}

func (s *fakeSwitch) write(b []byte) {
	s.t.Helper()
	_, err := s.nc.Write(b)
	require.NoError(s.t, err)
}

func startDriver(t *testing.T) (*Driver, eventSink) {
	t.Helper()
	cfg := Config{
		ListenAddr:   "127.0.0.1:0",
		EchoInterval: util.DurWrap{Duration: time.Hour},
		LLDPInterval: util.DurWrap{Duration: time.Hour},
	}
	cfg.InitDefaults()
	events := make(eventSink, 16)
	d := New(cfg, events, Metrics{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(testlog.Context(t))
	}()
	require.Eventually(t, func() bool { return d.Addr() != nil }, 5*time.Second,
		10*time.Millisecond)
	t.Cleanup(func() {
		require.NoError(t, d.Close(context.Background()))
		require.NoError(t, <-errCh)
	})
	return d, events
}

func TestDriver(t *testing.T) {
	d, events := startDriver(t)
	sw := dialSwitch(t, d.Addr(), 0x42, 1, 2)
	assert.Equal(t, controller.SwitchEnter{Node: 0x42, Ports: []addr.Port{1, 2}},
		events.next(t))

	frame := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 1, 0x08, 0x06}
	sw.write(packetInMsg(1, frame))
	assert.Equal(t, controller.PacketIn{Node: 0x42, InPort: 1, Data: frame}, events.next(t))

	sw.write(portStatusMsg(portStatusDelete, ofpPort(2, false)))
	assert.Equal(t, controller.PortDelete{Node: 0x42, Port: 2}, events.next(t))
	sw.write(portStatusMsg(0, ofpPort(3, false)))
	assert.Equal(t, controller.PortAdd{Node: 0x42, Port: 3}, events.next(t))

	require.NoError(t, d.FlowMod(0x42, flowsync.FlowMod{
		Command:  flowsync.Add,
		Priority: 10,
		Actions:  []flowsync.Action{flowsync.Output(1)},
	}))
	sw.expect(typeFlowMod)

	sw.write(ofMessage(typeEchoRequest, 77, nil))
	_, h := sw.expect(typeEchoReply)
	assert.Equal(t, uint32(77), h.Xid)

	assert.ErrorIs(t, d.PacketOut(0x43, flowsync.PacketOut{}), ErrNotConnected)

	sw.nc.Close()
	assert.Equal(t, controller.SwitchLeave{Node: 0x42}, events.next(t))
	assert.ErrorIs(t, d.MeterMod(0x42, flowsync.MeterMod{Command: flowsync.Add, MeterID: 1}),
		ErrNotConnected)
}

func TestDriverLinkDiscovery(t *testing.T) {
	d, events := startDriver(t)
	a := dialSwitch(t, d.Addr(), 1, 12)
	assert.Equal(t, controller.SwitchEnter{Node: 1, Ports: []addr.Port{12}}, events.next(t))
	b := dialSwitch(t, d.Addr(), 2, 11)
	assert.Equal(t, controller.SwitchEnter{Node: 2, Ports: []addr.Port{11}}, events.next(t))

	probe, err := lldpFrame(1, 12)
	require.NoError(t, err)
	b.write(packetInMsg(11, probe))
	want := topology.Link{Src: 1, SrcPort: 12, Dst: 2, DstPort: 11}
	assert.Equal(t, controller.LinkAdd{Link: want}, events.next(t))

	// A link that is observed again is not reported twice.
	b.write(packetInMsg(11, probe))
	frame := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 2, 0x08, 0x06}
	b.write(packetInMsg(11, frame))
	assert.Equal(t, controller.PacketIn{Node: 2, InPort: 11, Data: frame}, events.next(t))

	// Probes from unknown switches are ignored.
	unknown, err := lldpFrame(9, 1)
	require.NoError(t, err)
	a.write(packetInMsg(12, unknown))
	a.write(packetInMsg(12, frame))
	assert.Equal(t, controller.PacketIn{Node: 1, InPort: 12, Data: frame}, events.next(t))

	// A reconnect replaces the connection without a leave event.
	b2 := dialSwitch(t, d.Addr(), 2, 11)
	assert.Equal(t, controller.SwitchEnter{Node: 2, Ports: []addr.Port{11}}, events.next(t))
	_, _, err = readMessage(b.nc)
	assert.Error(t, err)
	assert.Empty(t, events)

	// The links of the reconnected switch are reported again.
	b2.write(packetInMsg(11, probe))
	assert.Equal(t, controller.LinkAdd{Link: want}, events.next(t))
}

func TestHandshakeRejectsOldVersion(t *testing.T) {
	switchSide, controllerSide := net.Pipe()
	defer switchSide.Close()
	errCh := make(chan error, 1)
	go func() {
		_, _, err := handshake(controllerSide, 5*time.Second)
		controllerSide.Close()
		errCh <- err
	}()
	_, _, err := readMessage(switchSide)
	require.NoError(t, err)
	hello := ofMessage(typeHello, 0, nil)
	hello[0] = 1
	_, err = switchSide.Write(hello)
	require.NoError(t, err)
	assert.Error(t, <-errCh)
}
