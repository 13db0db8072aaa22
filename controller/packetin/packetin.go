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

// Package packetin classifies the frames switches send to the controller.
package packetin

import (
	"fmt"
	"net/netip"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// Kind is the class of a frame.
type Kind uint8

const (
	// KindLLDP is a link discovery frame, handled by the switch driver.
	KindLLDP Kind = iota
	// KindDiscoveryReply answers a host discovery probe.
	KindDiscoveryReply
	// KindARP is an ARP frame.
	KindARP
	// KindBroadcast is any other broadcast frame.
	KindBroadcast
	// KindStream is a frame of a multicast stream.
	KindStream
	// KindMulticast is a multicast frame that does not belong to a stream.
	KindMulticast
	// KindUnicast is a frame to a single host.
	KindUnicast
)

func (k Kind) String() string {
	switch k {
	case KindLLDP:
		return "lldp"
	case KindDiscoveryReply:
		return "discovery_reply"
	case KindARP:
		return "arp"
	case KindBroadcast:
		return "broadcast"
	case KindStream:
		return "stream"
	case KindMulticast:
		return "multicast"
	case KindUnicast:
		return "unicast"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

// Packet is a classified frame.
type Packet struct {
	Kind Kind
	Src  addr.MAC
	Dst  addr.MAC
	// SrcIP is the IPv4 source of IP frames or the sender address of ARP
	// frames. It is invalid for other frames.
	SrcIP netip.Addr
	// Stream is the stream id of KindStream frames.
	Stream addr.StreamID
}

// Learnable reports whether the frame reveals the location of its sender.
func (p Packet) Learnable() bool {
	if p.Kind == KindLLDP || !p.SrcIP.IsValid() {
		return false
	}
	return !p.Src.IsMulticast() && p.Src != addr.DiscoveryMAC
}

// Classify decodes and classifies an ethernet frame.
func Classify(data []byte) (Packet, error) {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet,
		gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	ethLayer, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		return Packet{}, serrors.New("not an ethernet frame", "len", len(data))
	}
	src, err := addr.MACFrom(ethLayer.SrcMAC)
	if err != nil {
		return Packet{}, serrors.Wrap("parsing source MAC", err)
	}
	dst, err := addr.MACFrom(ethLayer.DstMAC)
	if err != nil {
		return Packet{}, serrors.Wrap("parsing destination MAC", err)
	}
	p := Packet{Src: src, Dst: dst}
	if dst == addr.LLDPMAC || ethLayer.EthernetType == layers.EthernetTypeLinkLayerDiscovery {
		p.Kind = KindLLDP
		return p, nil
	}

	var dstIP netip.Addr
	if ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		p.SrcIP, _ = netip.AddrFromSlice(ip.SrcIP.To4())
		dstIP, _ = netip.AddrFromSlice(ip.DstIP.To4())
	}
	arp, isARP := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
	if isARP {
		p.SrcIP, _ = netip.AddrFromSlice(arp.SourceProtAddress)
	}

	switch {
	case dst == addr.DiscoveryMAC:
		p.Kind = KindDiscoveryReply
	case isARP:
		p.Kind = KindARP
	case dst.IsBroadcast():
		p.Kind = KindBroadcast
	case dst.IsMulticast():
		p.Kind = KindMulticast
		if id, ok := addr.StreamIDFromIP(dstIP); ok && dst == id.MAC() {
			p.Kind = KindStream
			p.Stream = id
		}
	default:
		p.Kind = KindUnicast
	}
	return p, nil
}
