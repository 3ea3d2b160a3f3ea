//go:build linux || darwin

package conn

import (
	"fmt"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

type rawConn struct {
	fd   int
	once sync.Once
	done bool
}

// ListenRaw opens a SOCK_RAW IPPROTO_ICMP socket. Reads return the whole
// datagram, IPv4 header included.
func ListenRaw() (Conn, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocket, err)
	}
	logger.Debug("raw socket opened", zap.Int("fd", fd))
	return &rawConn{fd: fd}, nil
}

func (c *rawConn) WriteTo(b []byte, dst netip.Addr) error {
	if c.done {
		return ErrClosed
	}
	if !dst.Is4() {
		return fmt.Errorf("%w: %s", ErrNoIPv4, dst)
	}
	// the port is meaningless for raw icmp
	to := &unix.SockaddrInet4{Port: 0, Addr: dst.As4()}
	return unix.Sendto(c.fd, b, 0, to)
}

func (c *rawConn) ReadFrom(b []byte, timeout time.Duration) (int, error) {
	if c.done {
		return 0, ErrClosed
	}
	if timeout <= 0 {
		return 0, ErrTimeout
	}
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
	ms := int(timeout / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, ErrTimeout
		}
		break
	}
	n, _, err := unix.Recvfrom(c.fd, b, 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *rawConn) Close() error {
	var err error
	c.once.Do(func() {
		c.done = true
		err = unix.Close(c.fd)
	})
	return err
}
