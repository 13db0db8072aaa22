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

package hosts

import (
	"context"
	"net/netip"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// Addresses used by discovery probes. Hosts answer the ICMP echo broadcast
// towards DiscoveryMAC, which the controller consumes.
var (
	ProbeSrcIP = netip.MustParseAddr("172.18.255.254")
	ProbeDstIP = netip.MustParseAddr("172.18.255.255")
)

const probeID = 0x5353

// ProbeFrame returns the ethernet frame of a discovery probe.
func ProbeFrame(seq uint16) ([]byte, error) {
	ethernet := layers.Ethernet{
		SrcMAC:       addr.DiscoveryMAC.HardwareAddr(),
		DstMAC:       addr.BroadcastMAC.HardwareAddr(),
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    ProbeSrcIP.AsSlice(),
		DstIP:    ProbeDstIP.AsSlice(),
	}
	icmp := layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       probeID,
		Seq:      seq,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	err := gopacket.SerializeLayers(buf, opts, &ethernet, &ip, &icmp,
		gopacket.Payload("host-discovery"))
	if err != nil {
		return nil, serrors.Wrap("serializing discovery probe", err)
	}
	return buf.Bytes(), nil
}

// FloodPorts lists the host facing ports of the switches.
type FloodPorts interface {
	Nodes() []addr.DPID
	FloodPorts(n addr.DPID) []addr.Port
}

// PacketSender sends a frame out of a switch port.
type PacketSender interface {
	PacketOut(ctx context.Context, node addr.DPID, port addr.Port, data []byte)
}

// Discoverer sends discovery probes.
type Discoverer struct {
	Topology FloodPorts
	Sender   PacketSender

	seq uint16
}

// Discover sends a probe out of every flood port of every switch. It returns
// the number of probes sent.
func (d *Discoverer) Discover(ctx context.Context) (int, error) {
	d.seq++
	frame, err := ProbeFrame(d.seq)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, n := range d.Topology.Nodes() {
		for _, p := range d.Topology.FloodPorts(n) {
			d.Sender.PacketOut(ctx, n, p, frame)
			sent++
		}
	}
	log.FromCtx(ctx).Debug("Sent host discovery probes", "probes", sent, "seq", d.seq)
	return sent, nil
}
