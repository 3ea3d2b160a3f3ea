package conn

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/LanXuage/gping/common/constant"
	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// datagramConn is the unprivileged "ping socket". The kernel strips the IP
// header and rewrites the echo identifier, so ReadFrom rebuilds a minimal
// header carrying the TTL reported by the control message.
type datagramConn struct {
	conn *icmp.PacketConn
	pc   *ipv4.PacketConn
	buf  []byte
}

func ListenDatagram() (Conn, error) {
	c, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocket, err)
	}
	pc := c.IPv4PacketConn()
	if err := pc.SetControlMessage(ipv4.FlagTTL|ipv4.FlagDst, true); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: %v", ErrSocket, err)
	}
	logger.Debug("datagram socket opened", zap.String("local", c.LocalAddr().String()))
	return &datagramConn{
		conn: c,
		pc:   pc,
		buf:  make([]byte, constant.RECV_BUFFER_SIZE),
	}, nil
}

func (c *datagramConn) WriteTo(b []byte, dst netip.Addr) error {
	if !dst.Is4() {
		return fmt.Errorf("%w: %s", ErrNoIPv4, dst)
	}
	_, err := c.conn.WriteTo(b, &net.UDPAddr{IP: dst.AsSlice()})
	if errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

func (c *datagramConn) ReadFrom(b []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		return 0, ErrTimeout
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, cm, peer, err := c.pc.ReadFrom(c.buf)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			return 0, ErrTimeout
		case errors.Is(err, net.ErrClosed):
			return 0, ErrClosed
		}
		return 0, err
	}
	return frame(b, c.buf[:n], cm, peer)
}

func (c *datagramConn) Close() error {
	err := c.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// frame writes a 20 byte IPv4 header followed by msg into b.
func frame(b, msg []byte, cm *ipv4.ControlMessage, peer net.Addr) (int, error) {
	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(msg),
		Protocol: 1,
	}
	if cm != nil {
		h.TTL = cm.TTL
		h.Dst = cm.Dst
	}
	switch addr := peer.(type) {
	case *net.UDPAddr:
		h.Src = addr.IP
	case *net.IPAddr:
		h.Src = addr.IP
	}
	hb, err := h.Marshal()
	if err != nil {
		return 0, err
	}
	if len(b) < len(hb)+len(msg) {
		return 0, fmt.Errorf("receive buffer too small: %d < %d", len(b), len(hb)+len(msg))
	}
	n := copy(b, hb)
	n += copy(b[n:], msg)
	return n, nil
}
