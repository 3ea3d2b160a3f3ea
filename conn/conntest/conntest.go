// Package conntest provides an in-memory conn.Conn that plays an ICMP echo
// responder against a fake clock.
package conntest

import (
	"encoding/binary"
	"net/netip"
	"sync"
	"time"

	"github.com/LanXuage/gping/conn"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock() *Clock {
	return &Clock{t: time.Unix(1700000000, 0)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Datagram is delivered Delay after the previous read returned.
type Datagram struct {
	Data  []byte
	Delay time.Duration
}

type Conn struct {
	Clock   *Clock
	Respond bool          // echo every request back
	RTT     time.Duration // delay of echoed replies
	TTL     uint8
	Src     netip.Addr

	Queue   []Datagram
	Budgets []time.Duration // timeout passed to each ReadFrom
	Written [][]byte
	Closed  int
}

func New(clock *Clock) *Conn {
	return &Conn{
		Clock:   clock,
		Respond: true,
		TTL:     64,
		Src:     netip.MustParseAddr("127.0.0.1"),
	}
}

func (c *Conn) Push(data []byte, delay time.Duration) {
	c.Queue = append(c.Queue, Datagram{Data: data, Delay: delay})
}

func (c *Conn) WriteTo(b []byte, dst netip.Addr) error {
	if c.Closed > 0 {
		return conn.ErrClosed
	}
	c.Written = append(c.Written, append([]byte(nil), b...))
	if c.Respond && len(b) >= 8 && b[0] == layers.ICMPv4TypeEchoRequest {
		id := binary.BigEndian.Uint16(b[4:6])
		seq := binary.BigEndian.Uint16(b[6:8])
		c.Push(Reply(c.Src, c.TTL, layers.ICMPv4TypeEchoReply, id, seq, b[8:]), c.RTT)
	}
	return nil
}

func (c *Conn) ReadFrom(b []byte, timeout time.Duration) (int, error) {
	if c.Closed > 0 {
		return 0, conn.ErrClosed
	}
	c.Budgets = append(c.Budgets, timeout)
	if len(c.Queue) == 0 {
		c.Clock.Advance(timeout)
		return 0, conn.ErrTimeout
	}
	head := &c.Queue[0]
	if head.Delay > timeout {
		head.Delay -= timeout
		c.Clock.Advance(timeout)
		return 0, conn.ErrTimeout
	}
	c.Clock.Advance(head.Delay)
	n := copy(b, head.Data)
	c.Queue = c.Queue[1:]
	return n, nil
}

func (c *Conn) Close() error {
	c.Closed++
	return nil
}

// Reply serializes an IPv4 datagram carrying an ICMP message.
func Reply(src netip.Addr, ttl, typ uint8, id, seq uint16, payload []byte) []byte {
	ipLayer := &layers.IPv4{
		Version:  4,
		TTL:      ttl,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    src.AsSlice(),
		DstIP:    []byte{127, 0, 0, 1},
	}
	icmpLayer := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(typ, 0),
		Id:       id,
		Seq:      seq,
	}
	buffer := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buffer, opts, ipLayer, icmpLayer, gopacket.Payload(payload)); err != nil {
		panic(err)
	}
	return buffer.Bytes()
}
