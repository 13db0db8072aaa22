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
	"sync"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/topology"
)

const lldpTTL = 120

// lldpFrame builds the discovery frame that is sent out of port at node.
func lldpFrame(node addr.DPID, port addr.Port) ([]byte, error) {
	chassis := make([]byte, 8)
	binary.BigEndian.PutUint64(chassis, uint64(node))
	portID := make([]byte, 4)
	binary.BigEndian.PutUint32(portID, uint32(port))
	eth := &layers.Ethernet{
		SrcMAC:       addr.DiscoveryMAC.HardwareAddr(),
		DstMAC:       addr.LLDPMAC.HardwareAddr(),
		EthernetType: layers.EthernetTypeLinkLayerDiscovery,
	}
	lldp := &layers.LinkLayerDiscovery{
		ChassisID: layers.LLDPChassisID{
			Subtype: layers.LLDPChassisIDSubTypeLocal,
			ID:      chassis,
		},
		PortID: layers.LLDPPortID{
			Subtype: layers.LLDPPortIDSubtypeLocal,
			ID:      portID,
		},
		TTL: lldpTTL,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, lldp); err != nil {
		return nil, serrors.Wrap("serializing LLDP frame", err)
	}
	return buf.Bytes(), nil
}

// parseLLDP returns the origin of a discovery frame. It returns false for
// frames that were not generated by lldpFrame.
func parseLLDP(data []byte) (addr.DPID, addr.Port, bool) {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.DecodeOptions{
		Lazy:   true,
		NoCopy: true,
	})
	l, ok := pkt.Layer(layers.LayerTypeLinkLayerDiscovery).(*layers.LinkLayerDiscovery)
	if !ok {
		return 0, 0, false
	}
	if l.ChassisID.Subtype != layers.LLDPChassisIDSubTypeLocal || len(l.ChassisID.ID) != 8 ||
		l.PortID.Subtype != layers.LLDPPortIDSubtypeLocal || len(l.PortID.ID) != 4 {
		return 0, 0, false
	}
	return addr.DPID(binary.BigEndian.Uint64(l.ChassisID.ID)),
		addr.Port(binary.BigEndian.Uint32(l.PortID.ID)), true
}

// linkTracker remembers when each link direction was last observed.
type linkTracker struct {
	mu   sync.Mutex
	seen map[topology.Link]time.Time
}

func newLinkTracker() *linkTracker {
	return &linkTracker{seen: make(map[topology.Link]time.Time)}
}

// observe records l at now and reports whether l was not known before.
func (t *linkTracker) observe(l topology.Link, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, known := t.seen[l]
	t.seen[l] = now
	return !known
}

// expire forgets and returns all links last observed before deadline. The
// controller removes both directions of an expired link, so the reverse
// direction is forgotten as well and reported anew when it is observed next.
func (t *linkTracker) expire(deadline time.Time) []topology.Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	var expired []topology.Link
	for l, seen := range t.seen {
		if seen.Before(deadline) {
			expired = append(expired, l)
		}
	}
	for _, l := range expired {
		delete(t.seen, l)
		delete(t.seen, l.Reverse())
	}
	return expired
}

// forgetPort drops all links attached to port at node. The controller
// removes them from the topology on its own.
func (t *linkTracker) forgetPort(node addr.DPID, port addr.Port) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for l := range t.seen {
		if (l.Src == node && l.SrcPort == port) || (l.Dst == node && l.DstPort == port) {
			delete(t.seen, l)
		}
	}
}

// forgetNode drops all links attached to node.
func (t *linkTracker) forgetNode(node addr.DPID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for l := range t.seen {
		if l.Src == node || l.Dst == node {
			delete(t.seen, l)
		}
	}
}
