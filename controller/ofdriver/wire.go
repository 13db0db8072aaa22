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
	"io"

	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// OpenFlow 1.3 wire constants that are decoded without the message library.
const (
	version13 = 4
	headerLen = 8

	typeHello            = 0
	typeError            = 1
	typeEchoRequest      = 2
	typeEchoReply        = 3
	typeFeaturesReply    = 6
	typePacketIn         = 10
	typePortStatus       = 12
	typeMultipartRequest = 18
	typeMultipartReply   = 19
	typeMeterMod         = 29

	multipartPortDesc = 13
	multipartMoreFlag = 1

	portStatusDelete = 1

	portConfigDown = 1
	portStateDown  = 1
	ofpPortLen     = 64

	// portMax is the highest number of a physical port.
	portMax = 0xffffff00

	oxmClassBasic  = 0x8000
	oxmFieldInPort = 0
	instrTypeMeter = 6
)

// header is the common OpenFlow header.
type header struct {
	Version uint8
	Type    uint8
	Length  uint16
	Xid     uint32
}

func parseHeader(b []byte) (header, error) {
	if len(b) < headerLen {
		return header{}, serrors.New("message too short", "len", len(b))
	}
	return header{
		Version: b[0],
		Type:    b[1],
		Length:  binary.BigEndian.Uint16(b[2:4]),
		Xid:     binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

func (h header) put(b []byte) {
	b[0] = h.Version
	b[1] = h.Type
	binary.BigEndian.PutUint16(b[2:4], h.Length)
	binary.BigEndian.PutUint32(b[4:8], h.Xid)
}

// readMessage reads one complete OpenFlow message from r.
func readMessage(r io.Reader) ([]byte, header, error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, header{}, err
	}
	h, _ := parseHeader(hdr)
	if h.Length < headerLen {
		return nil, h, serrors.New("invalid message length", "length", h.Length,
			"type", h.Type)
	}
	msg := make([]byte, h.Length)
	copy(msg, hdr)
	if _, err := io.ReadFull(r, msg[headerLen:]); err != nil {
		return nil, h, err
	}
	return msg, h, nil
}

// portDescRequest returns a multipart request for the port descriptions.
func portDescRequest(xid uint32) []byte {
	b := make([]byte, 16)
	header{Version: version13, Type: typeMultipartRequest, Length: 16, Xid: xid}.put(b)
	binary.BigEndian.PutUint16(b[8:10], multipartPortDesc)
	return b
}

// decodePortDesc decodes a port description multipart reply. It returns the
// physical ports that are up and whether more replies follow.
func decodePortDesc(b []byte) ([]addr.Port, bool, error) {
	if len(b) < 16 {
		return nil, false, serrors.New("multipart reply too short", "len", len(b))
	}
	if typ := binary.BigEndian.Uint16(b[8:10]); typ != multipartPortDesc {
		return nil, false, serrors.New("unexpected multipart reply", "type", typ)
	}
	more := binary.BigEndian.Uint16(b[10:12])&multipartMoreFlag != 0
	body := b[16:]
	if len(body)%ofpPortLen != 0 {
		return nil, false, serrors.New("truncated port description", "len", len(body))
	}
	var ports []addr.Port
	for ; len(body) > 0; body = body[ofpPortLen:] {
		p, up := decodePort(body[:ofpPortLen])
		if up && p != 0 && p <= portMax {
			ports = append(ports, p)
		}
	}
	return ports, more, nil
}

// decodePort decodes an ofp_port structure.
func decodePort(b []byte) (addr.Port, bool) {
	config := binary.BigEndian.Uint32(b[32:36])
	state := binary.BigEndian.Uint32(b[36:40])
	up := config&portConfigDown == 0 && state&portStateDown == 0
	return addr.Port(binary.BigEndian.Uint32(b[0:4])), up
}

type portStatus struct {
	Reason uint8
	Port   addr.Port
	Up     bool
}

func decodePortStatus(b []byte) (portStatus, error) {
	if len(b) < 16+ofpPortLen {
		return portStatus{}, serrors.New("port status too short", "len", len(b))
	}
	p, up := decodePort(b[16 : 16+ofpPortLen])
	return portStatus{Reason: b[8], Port: p, Up: up}, nil
}

type packetIn struct {
	InPort addr.Port
	Data   []byte
}

// decodePacketIn extracts the ingress port and the frame of a packet-in.
func decodePacketIn(b []byte) (packetIn, error) {
	// header, buffer_id, total_len, reason, table_id and cookie precede the
	// match.
	const matchOffset = 24
	if len(b) < matchOffset+4 {
		return packetIn{}, serrors.New("packet-in too short", "len", len(b))
	}
	matchLen := int(binary.BigEndian.Uint16(b[matchOffset+2 : matchOffset+4]))
	padded := (matchLen + 7) / 8 * 8
	dataOffset := matchOffset + padded + 2
	if matchLen < 4 || len(b) < dataOffset {
		return packetIn{}, serrors.New("invalid packet-in match", "match_len", matchLen,
			"len", len(b))
	}
	var pin packetIn
	found := false
	oxms := b[matchOffset+4 : matchOffset+matchLen]
	for len(oxms) >= 4 {
		class := binary.BigEndian.Uint16(oxms[0:2])
		field := oxms[2] >> 1
		l := int(oxms[3])
		if len(oxms) < 4+l {
			break
		}
		if class == oxmClassBasic && field == oxmFieldInPort && l == 4 {
			pin.InPort = addr.Port(binary.BigEndian.Uint32(oxms[4:8]))
			found = true
		}
		oxms = oxms[4+l:]
	}
	if !found {
		return packetIn{}, serrors.New("packet-in without in_port")
	}
	pin.Data = b[dataOffset:]
	return pin, nil
}

// appendMeterInstruction appends a meter instruction to an encoded flow mod
// and fixes up the message length.
func appendMeterInstruction(msg []byte, meter uint32) []byte {
	instr := make([]byte, 8)
	binary.BigEndian.PutUint16(instr[0:2], instrTypeMeter)
	binary.BigEndian.PutUint16(instr[2:4], 8)
	binary.BigEndian.PutUint32(instr[4:8], meter)
	msg = append(msg, instr...)
	binary.BigEndian.PutUint16(msg[2:4], uint16(len(msg)))
	return msg
}
