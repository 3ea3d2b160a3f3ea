//go:build !linux && !darwin

package conn

import "fmt"

// ListenRaw is only implemented on Linux and Darwin; use the datagram socket
// elsewhere.
func ListenRaw() (Conn, error) {
	return nil, fmt.Errorf("%w: raw sockets are not supported on this platform", ErrSocket)
}
