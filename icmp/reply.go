package icmp

import (
	"errors"
	"net/netip"

	"github.com/LanXuage/gping/common/constant"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var ErrNotICMP = errors.New("datagram does not carry an ICMPv4 message")

type EchoReply struct {
	Src        netip.Addr
	TTL        uint8
	Type       uint8
	Code       uint8
	Identifier uint16
	Sequence   uint16
}

// Matches reports whether the reply answers the echo request with sequence seq.
func (r *EchoReply) Matches(seq uint16) bool {
	return r.Type == TypeEchoReply && r.Sequence == seq
}

// ParseReply decodes an IPv4 datagram carrying an ICMP message. The TTL is
// read at offset 8 of the IP header and the ICMP header follows the IHL.
// Non echo messages still yield their type and code.
func ParseReply(datagram []byte) (*EchoReply, error) {
	if len(datagram) < constant.IPV4_HEADER_LEN {
		return nil, ErrNotICMP
	}
	ihl := int(datagram[0]&0x0f) * 4
	if datagram[0]>>4 != 4 || ihl < constant.IPV4_HEADER_LEN ||
		datagram[9] != uint8(layers.IPProtocolICMPv4) ||
		len(datagram) < ihl+constant.ICMP_HEADER_LEN {
		return nil, ErrNotICMP
	}
	icmp := &layers.ICMPv4{}
	if err := icmp.DecodeFromBytes(datagram[ihl:], gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	src, _ := netip.AddrFromSlice(datagram[12:16])
	return &EchoReply{
		Src:        src,
		TTL:        datagram[8],
		Type:       icmp.TypeCode.Type(),
		Code:       icmp.TypeCode.Code(),
		Identifier: icmp.Id,
		Sequence:   icmp.Seq,
	}, nil
}
