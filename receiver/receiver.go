package receiver

import (
	"errors"
	"fmt"
	"time"

	"github.com/LanXuage/gping/common"
	"github.com/LanXuage/gping/common/constant"
	"github.com/LanXuage/gping/conn"
	"github.com/LanXuage/gping/icmp"
	"go.uber.org/zap"
)

var logger = common.GetLogger()

var ErrTimeout = errors.New("request timed out")

type Reply struct {
	Received time.Time
	TTL      uint8
	Src      string
}

// Listener waits on a shared socket for the echo reply of one sequence at a
// time.
type Listener struct {
	Conn    conn.Conn
	Timeout time.Duration // 每个请求的等待预算
	Tracker *Tracker
	Now     func() time.Time
	buf     []byte
}

func NewListener(c conn.Conn, timeout time.Duration) *Listener {
	return &Listener{
		Conn:    c,
		Timeout: timeout,
		Tracker: NewTracker(),
		Now:     time.Now,
		buf:     make([]byte, constant.RECV_BUFFER_SIZE),
	}
}

// WaitForReply blocks until an echo reply with sequence seq arrives or the
// timeout budget is spent. The deadline is fixed on entry; every poll is
// given what is left of it.
func (l *Listener) WaitForReply(seq uint16) (*Reply, error) {
	deadline := l.Now().Add(l.Timeout)
	for {
		remaining := deadline.Sub(l.Now())
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		n, err := l.Conn.ReadFrom(l.buf, remaining)
		if errors.Is(err, conn.ErrTimeout) {
			return nil, ErrTimeout
		}
		if err != nil {
			return nil, fmt.Errorf("wait for reply %d: %w", seq, err)
		}
		received := l.Now()
		reply, err := icmp.ParseReply(l.buf[:n])
		if err != nil {
			logger.Debug("drop datagram", zap.Int("len", n), zap.Error(err))
			continue
		}
		if reply.Matches(seq) {
			l.Tracker.Answer(seq)
			return &Reply{Received: received, TTL: reply.TTL, Src: reply.Src.String()}, nil
		}
		l.ignore(reply)
	}
}

func (l *Listener) ignore(reply *icmp.EchoReply) {
	if reply.Type != icmp.TypeEchoReply {
		logger.Debug("ignore icmp", zap.Uint8("type", reply.Type), zap.Uint8("code", reply.Code), zap.String("src", reply.Src.String()))
		return
	}
	switch {
	case l.Tracker.Answered(reply.Sequence):
		logger.Debug("duplicate reply", zap.Uint16("seq", reply.Sequence), zap.String("src", reply.Src.String()))
	case l.Tracker.InFlight(reply.Sequence):
		if at, ok := l.Tracker.Answer(reply.Sequence); ok {
			logger.Debug("late reply", zap.Uint16("seq", reply.Sequence), zap.Duration("rtt", l.Now().Sub(at)))
		}
	default:
		logger.Debug("foreign reply", zap.Uint16("seq", reply.Sequence), zap.Uint16("id", reply.Identifier))
	}
}
