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

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"

	"github.com/sstreaming/sstreaming/controller/flowsync"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

const (
	meterCommandAdd    = 0
	meterCommandDelete = 2
	meterFlagKbps      = 1
	meterFlagBurst     = 4
	meterBandDrop      = 1
	meterBandLen       = 16
	meterModLen        = 16
)

func encodeHello() ([]byte, error) {
	h, err := common.NewHello(version13)
	if err != nil {
		return nil, err
	}
	return h.MarshalBinary()
}

func encodeFeaturesRequest() ([]byte, error) {
	return openflow13.NewFeaturesRequest().MarshalBinary()
}

func encodeEchoRequest() ([]byte, error) {
	return openflow13.NewEchoRequest().MarshalBinary()
}

func encodeEchoReply(xid uint32) ([]byte, error) {
	r := openflow13.NewEchoReply()
	r.Xid = xid
	return r.MarshalBinary()
}

func encodeFlowMod(m flowsync.FlowMod) ([]byte, error) {
	fm := openflow13.NewFlowMod()
	fm.Priority = m.Priority
	fm.IdleTimeout = m.IdleTimeout
	switch m.Command {
	case flowsync.Add:
		fm.Command = openflow13.FC_ADD
	case flowsync.Delete:
		fm.Command = openflow13.FC_DELETE
		fm.OutPort = uint32(m.OutPort)
		fm.OutGroup = m.OutGroup
	default:
		return nil, serrors.New("unsupported flow command", "command", m.Command)
	}
	if m.Match.InPort != 0 {
		fm.Match.AddField(*openflow13.NewInPortField(uint32(m.Match.InPort)))
	}
	if m.Match.EthDst != nil {
		var mask *net.HardwareAddr
		if m.Match.EthDstMask != nil {
			hw := m.Match.EthDstMask.HardwareAddr()
			mask = &hw
		}
		fm.Match.AddField(*openflow13.NewEthDstField(m.Match.EthDst.HardwareAddr(), mask))
	}
	if len(m.Actions) > 0 {
		instr := openflow13.NewInstrApplyActions()
		for _, a := range m.Actions {
			act, err := encodeAction(a)
			if err != nil {
				return nil, err
			}
			if err := instr.AddAction(act, false); err != nil {
				return nil, serrors.Wrap("adding action", err, "action", a)
			}
		}
		fm.AddInstruction(instr)
	}
	b, err := fm.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("encoding flow mod", err)
	}
	if m.Meter != 0 && m.Command == flowsync.Add {
		b = appendMeterInstruction(b, m.Meter)
	}
	return b, nil
}

func encodeGroupMod(m flowsync.GroupMod) ([]byte, error) {
	gm := openflow13.NewGroupMod()
	gm.GroupId = m.GroupID
	switch m.Command {
	case flowsync.Add:
		gm.Command = openflow13.OFPGC_ADD
	case flowsync.Delete:
		gm.Command = openflow13.OFPGC_DELETE
	default:
		return nil, serrors.New("unsupported group command", "command", m.Command)
	}
	switch m.Type {
	case flowsync.GroupTypeAll:
		gm.Type = openflow13.OFPGT_ALL
	case flowsync.GroupTypeSelect:
		gm.Type = openflow13.OFPGT_SELECT
	default:
		return nil, serrors.New("unsupported group type", "type", m.Type)
	}
	for _, b := range m.Buckets {
		bkt := openflow13.NewBucket()
		if m.Type == flowsync.GroupTypeSelect {
			bkt.Weight = b.Weight
		}
		for _, a := range b.Actions {
			act, err := encodeAction(a)
			if err != nil {
				return nil, err
			}
			bkt.AddAction(act)
		}
		gm.AddBucket(*bkt)
	}
	b, err := gm.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("encoding group mod", err)
	}
	return b, nil
}

// encodeMeterMod encodes a meter mod with a single drop band. The band burst
// equals the rate.
func encodeMeterMod(m flowsync.MeterMod) ([]byte, error) {
	var command uint16
	bands := 0
	switch m.Command {
	case flowsync.Add:
		command, bands = meterCommandAdd, 1
	case flowsync.Delete:
		command = meterCommandDelete
	default:
		return nil, serrors.New("unsupported meter command", "command", m.Command)
	}
	l := meterModLen + bands*meterBandLen
	b := make([]byte, l)
	header{Version: version13, Type: typeMeterMod, Length: uint16(l)}.put(b)
	binary.BigEndian.PutUint16(b[8:10], command)
	binary.BigEndian.PutUint16(b[10:12], meterFlagKbps|meterFlagBurst)
	binary.BigEndian.PutUint32(b[12:16], m.MeterID)
	if bands > 0 {
		band := b[meterModLen:]
		binary.BigEndian.PutUint16(band[0:2], meterBandDrop)
		binary.BigEndian.PutUint16(band[2:4], meterBandLen)
		binary.BigEndian.PutUint32(band[4:8], m.RateKbps)
		binary.BigEndian.PutUint32(band[8:12], m.RateKbps)
	}
	return b, nil
}

func encodePacketOut(p flowsync.PacketOut) ([]byte, error) {
	po := openflow13.NewPacketOut()
	po.InPort = uint32(p.InPort)
	for _, a := range p.Actions {
		act, err := encodeAction(a)
		if err != nil {
			return nil, err
		}
		po.AddAction(act)
	}
	po.Data = rawFrame(p.Data)
	b, err := po.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("encoding packet-out", err)
	}
	return b, nil
}

func encodeAction(a flowsync.Action) (openflow13.Action, error) {
	switch a.Kind {
	case flowsync.ActionOutput:
		out := openflow13.NewActionOutput(uint32(a.Port))
		if a.Port == flowsync.PortController {
			out.MaxLen = openflow13.OFPCML_NO_BUFFER
		}
		return out, nil
	case flowsync.ActionGroup:
		return openflow13.NewActionGroup(a.Group), nil
	case flowsync.ActionSetEthDst:
		return openflow13.NewActionSetField(*openflow13.NewEthDstField(a.MAC.HardwareAddr(), nil)), nil
	case flowsync.ActionSetIPv4Dst:
		if !a.IP.Is4() {
			return nil, serrors.New("not an IPv4 address", "ip", a.IP)
		}
		ip := a.IP.As4()
		return openflow13.NewActionSetField(*openflow13.NewIpv4DstField(net.IP(ip[:]), nil)), nil
	default:
		return nil, serrors.New("unsupported action", "kind", a.Kind)
	}
}

// rawFrame carries an already serialized frame as packet-out payload.
type rawFrame []byte

func (f rawFrame) Len() uint16 {
	return uint16(len(f))
}

func (f rawFrame) MarshalBinary() ([]byte, error) {
	return []byte(f), nil
}

func (f rawFrame) UnmarshalBinary([]byte) error {
	return serrors.New("raw frames are write only")
}
