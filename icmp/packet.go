package icmp

import (
	"encoding/binary"

	"github.com/LanXuage/gping/common/constant"
	"github.com/google/gopacket/layers"
)

const (
	TypeEchoReply   uint8 = layers.ICMPv4TypeEchoReply
	TypeEchoRequest uint8 = layers.ICMPv4TypeEchoRequest
)

type EchoRequest struct {
	Type       uint8
	Code       uint8
	Checksum   uint16 // 序列化后回填
	Identifier uint16
	Sequence   uint16
	Payload    []byte
}

func NewEchoRequest(id, seq uint16, payload []byte) *EchoRequest {
	return &EchoRequest{
		Type:       TypeEchoRequest,
		Identifier: id,
		Sequence:   seq,
		Payload:    payload,
	}
}

// Marshal serializes the request and stores the computed checksum in r.
func (r *EchoRequest) Marshal() []byte {
	b := Build(r.Type, r.Code, r.Identifier, r.Sequence, r.Payload)
	r.Checksum = binary.BigEndian.Uint16(b[2:4])
	return b
}

// Build returns the 8 byte ICMP header followed by payload, checksum included.
func Build(typ, code uint8, id, seq uint16, payload []byte) []byte {
	b := make([]byte, constant.ICMP_HEADER_LEN+len(payload))
	b[0] = typ
	b[1] = code
	binary.BigEndian.PutUint16(b[4:6], id)
	binary.BigEndian.PutUint16(b[6:8], seq)
	copy(b[constant.ICMP_HEADER_LEN:], payload)
	binary.BigEndian.PutUint16(b[2:4], Checksum(b))
	return b
}

// Payload returns n bytes of repeating lowercase letters.
func Payload(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a' + byte(i%26)
	}
	return b
}
