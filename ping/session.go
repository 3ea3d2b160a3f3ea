package ping

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/LanXuage/gping/common"
	"github.com/LanXuage/gping/common/constant"
	"github.com/LanXuage/gping/conn"
	"github.com/LanXuage/gping/icmp"
	"github.com/LanXuage/gping/receiver"
	"go.uber.org/zap"
)

var logger = common.GetLogger()

var ErrClosed = errors.New("ping session closed")

type Options struct {
	Count      int           // 探测次数
	Size       int           // 负载字节数
	Timeout    time.Duration // 单个请求的应答等待预算
	Interval   time.Duration // 收到应答后的发包间隔
	Identifier uint16
	Privileged bool // 原始套接字，否则使用无特权 ICMP 数据报套接字
}

func DefaultOptions() Options {
	return Options{
		Count:      constant.DEFAULT_COUNT,
		Size:       constant.DEFAULT_SIZE,
		Timeout:    constant.DEFAULT_TIMEOUT,
		Interval:   constant.DEFAULT_INTERVAL,
		Identifier: common.ProcessIdentifier(),
		Privileged: true,
	}
}

func (o Options) Validate() error {
	switch {
	case o.Count < 1:
		return fmt.Errorf("invalid count %d: must be at least 1", o.Count)
	case o.Size < 0 || o.Size > constant.MAX_PAYLOAD_SIZE:
		return fmt.Errorf("invalid size %d: must be between 0 and %d", o.Size, constant.MAX_PAYLOAD_SIZE)
	case o.Timeout <= 0:
		return fmt.Errorf("invalid timeout %v: must be positive", o.Timeout)
	case o.Interval < 0:
		return fmt.Errorf("invalid interval %v: must not be negative", o.Interval)
	}
	return nil
}

// Session owns the socket used by every probe sent to one destination.
type Session struct {
	Options
	Dst      netip.Addr
	OnProbe  func(ProbeResult)
	Stats    Statistics
	conn     conn.Conn
	listener *receiver.Listener
	payload  []byte
	sleep    func(context.Context, time.Duration) error
	once     sync.Once
	closed   bool
}

// Open validates opts and opens the session socket. Socket failures are
// returned wrapping conn.ErrSocket.
func Open(dst netip.Addr, opts Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c, err := conn.Listen(opts.Privileged)
	if err != nil {
		return nil, err
	}
	return NewSession(c, dst, opts), nil
}

// NewSession wraps an already opened socket.
func NewSession(c conn.Conn, dst netip.Addr, opts Options) *Session {
	return &Session{
		Options:  opts,
		Dst:      dst,
		conn:     c,
		listener: receiver.NewListener(c, opts.Timeout),
		payload:  icmp.Payload(opts.Size),
		sleep:    sleepContext,
	}
}

// Send writes packet to dst and returns the time taken just before the write.
func (s *Session) Send(dst netip.Addr, packet []byte) (time.Time, error) {
	if s.closed {
		return time.Time{}, ErrClosed
	}
	sent := s.listener.Now()
	if err := s.conn.WriteTo(packet, dst); err != nil {
		return sent, fmt.Errorf("send to %s: %w", dst, err)
	}
	return sent, nil
}

func (s *Session) WaitForReply(seq uint16) (*receiver.Reply, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.listener.WaitForReply(seq)
}

// Probe sends one echo request and waits for its reply. A timeout is a
// result, not an error.
func (s *Session) Probe(seq uint16) (ProbeResult, error) {
	packet := icmp.NewEchoRequest(s.Identifier, seq, s.payload).Marshal()
	sent, err := s.Send(s.Dst, packet)
	if err != nil {
		return ProbeResult{}, err
	}
	s.listener.Tracker.Sent(seq, sent)
	reply, err := s.WaitForReply(seq)
	if errors.Is(err, receiver.ErrTimeout) {
		return ProbeResult{Sequence: seq, TimedOut: true}, nil
	}
	if err != nil {
		return ProbeResult{}, err
	}
	return ProbeResult{
		Sequence: seq,
		RTT:      reply.Received.Sub(sent),
		TTL:      reply.TTL,
	}, nil
}

// Run sends Count probes one after another. It stops early, without error,
// when ctx is cancelled between probes.
func (s *Session) Run(ctx context.Context) error {
	seq := constant.ICMPSeq
	for i := 0; i < s.Count; i++ {
		if ctx.Err() != nil {
			logger.Debug("run cancelled", zap.Int("sent", s.Stats.Sent))
			return nil
		}
		result, err := s.Probe(seq)
		if err != nil {
			return err
		}
		s.Stats.Add(result)
		if s.OnProbe != nil {
			s.OnProbe(result)
		}
		seq++
		if result.TimedOut || i == s.Count-1 {
			continue
		}
		if err := s.sleep(ctx, s.Interval); err != nil {
			return nil
		}
	}
	return nil
}

func (s *Session) Summary() Summary {
	return s.Stats.Summary(s.Size)
}

func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.closed = true
		err = s.conn.Close()
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
