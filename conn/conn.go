package conn

import (
	"errors"
	"net/netip"
	"time"

	"github.com/LanXuage/gping/common"
)

var logger = common.GetLogger()

var (
	ErrSocket  = errors.New("open icmp socket failed")
	ErrTimeout = errors.New("i/o timeout")
	ErrClosed  = errors.New("use of closed icmp socket")
)

// Conn is an IPv4 ICMP socket shared by every probe of a session.
type Conn interface {
	// WriteTo sends an ICMP message (no IP header) to dst.
	WriteTo(b []byte, dst netip.Addr) error
	// ReadFrom waits at most timeout for a datagram and copies it, IPv4
	// header first, into b. It returns ErrTimeout when nothing arrived.
	ReadFrom(b []byte, timeout time.Duration) (int, error)
	Close() error
}

// Listen opens the raw socket, or the unprivileged datagram socket when
// privileged is false.
func Listen(privileged bool) (Conn, error) {
	if privileged {
		return ListenRaw()
	}
	return ListenDatagram()
}
