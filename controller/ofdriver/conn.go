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
	"encoding/binary"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/contiv/libOpenflow/openflow13"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

var (
	// ErrNotConnected is returned for requests to a switch without a
	// connection.
	ErrNotConnected = serrors.New("switch not connected")
	// ErrQueueFull is returned if the send queue of a switch is full.
	ErrQueueFull = serrors.New("send queue full")
)

// conn is an established OpenFlow connection to a switch.
type conn struct {
	nc   net.Conn
	dpid addr.DPID
	out  chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	lastSeen  atomic.Int64

	mu    sync.Mutex
	ports map[addr.Port]struct{}
}

func newConn(nc net.Conn, dpid addr.DPID, ports []addr.Port, queue int) *conn {
	c := &conn{
		nc:     nc,
		dpid:   dpid,
		out:    make(chan []byte, queue),
		closed: make(chan struct{}),
		ports:  make(map[addr.Port]struct{}, len(ports)),
	}
	for _, p := range ports {
		c.ports[p] = struct{}{}
	}
	c.touch(time.Now())
	return c
}

// send queues an encoded message without blocking. If the queue is full the
// connection is closed: the switch has missed a message and only a fresh
// connection, which starts from a clean switch state, can recover from that.
func (c *conn) send(b []byte) error {
	select {
	case <-c.closed:
		return serrors.Wrap("sending message", ErrNotConnected, "dpid", c.dpid)
	default:
	}
	select {
	case c.out <- b:
		return nil
	case <-c.closed:
		return serrors.Wrap("sending message", ErrNotConnected, "dpid", c.dpid)
	default:
		c.close()
		return serrors.Wrap("sending message", ErrQueueFull, "dpid", c.dpid)
	}
}

func (c *conn) writeLoop() {
	defer log.HandlePanic()
	for {
		select {
		case <-c.closed:
			return
		case b := <-c.out:
			if _, err := c.nc.Write(b); err != nil {
				log.Debug("Writing to switch failed", "dpid", c.dpid, "err", err)
				c.close()
				return
			}
		}
	}
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.nc.Close()
	})
}

func (c *conn) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

func (c *conn) idleSince() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *conn) setPort(p addr.Port, up bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, had := c.ports[p]
	if up {
		c.ports[p] = struct{}{}
	} else {
		delete(c.ports, p)
	}
	return had != up
}

func (c *conn) portList() []addr.Port {
	c.mu.Lock()
	defer c.mu.Unlock()
	ports := make([]addr.Port, 0, len(c.ports))
	for p := range c.ports {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

// handshake negotiates OpenFlow 1.3 on a fresh connection and returns the
// datapath id and the ports that are up. The whole exchange must finish
// within timeout.
func handshake(nc net.Conn, timeout time.Duration) (addr.DPID, []addr.Port, error) {
	if err := nc.SetDeadline(time.Now().Add(timeout)); err != nil {
		return 0, nil, err
	}
	defer func() { _ = nc.SetDeadline(time.Time{}) }()

	hello, err := encodeHello()
	if err != nil {
		return 0, nil, err
	}
	if _, err := nc.Write(hello); err != nil {
		return 0, nil, serrors.Wrap("sending hello", err)
	}
	msg, err := awaitMessage(nc, typeHello)
	if err != nil {
		return 0, nil, err
	}
	// The lower of both versions is negotiated.
	if msg[0] < version13 {
		return 0, nil, serrors.New("unsupported OpenFlow version", "version", msg[0])
	}

	req, err := encodeFeaturesRequest()
	if err != nil {
		return 0, nil, err
	}
	if _, err := nc.Write(req); err != nil {
		return 0, nil, serrors.Wrap("sending features request", err)
	}
	if msg, err = awaitMessage(nc, typeFeaturesReply); err != nil {
		return 0, nil, err
	}
	if len(msg) < 16 {
		return 0, nil, serrors.New("features reply too short", "len", len(msg))
	}
	dpid := addr.DPID(binary.BigEndian.Uint64(msg[8:16]))

	if _, err := nc.Write(portDescRequest(1)); err != nil {
		return 0, nil, serrors.Wrap("sending port description request", err)
	}
	var ports []addr.Port
	for more := true; more; {
		if msg, err = awaitMessage(nc, typeMultipartReply); err != nil {
			return 0, nil, err
		}
		var batch []addr.Port
		if batch, more, err = decodePortDesc(msg); err != nil {
			return 0, nil, serrors.Wrap("decoding port description", err, "dpid", dpid)
		}
		ports = append(ports, batch...)
	}
	return dpid, ports, nil
}

// awaitMessage reads messages until one of type typ arrives. Echo requests
// are answered, errors abort and everything else is dropped.
func awaitMessage(nc net.Conn, typ uint8) ([]byte, error) {
	for {
		msg, h, err := readMessage(nc)
		if err != nil {
			return nil, serrors.Wrap("reading message", err, "awaiting", typ)
		}
		switch h.Type {
		case typ:
			return msg, nil
		case typeEchoRequest:
			reply, err := encodeEchoReply(h.Xid)
			if err != nil {
				return nil, err
			}
			if _, err := nc.Write(reply); err != nil {
				return nil, serrors.Wrap("sending echo reply", err)
			}
		case typeError:
			return nil, errorMessage(msg)
		}
	}
}

// errorMessage converts an OpenFlow error message to an error.
func errorMessage(msg []byte) error {
	em := openflow13.NewErrorMsg()
	if err := em.UnmarshalBinary(msg); err != nil {
		return serrors.Wrap("decoding error message", err)
	}
	return serrors.New("switch reported error", "type", em.Type, "code", em.Code)
}
