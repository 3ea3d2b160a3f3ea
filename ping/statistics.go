package ping

import (
	"time"

	"github.com/LanXuage/gping/common"
)

type ProbeResult struct {
	Sequence uint16
	RTT      time.Duration // 仅在未超时时有效
	TTL      uint8
	TimedOut bool
}

// Millis is the round trip in whole milliseconds.
func (r ProbeResult) Millis() int64 {
	return r.RTT.Milliseconds()
}

// Statistics accumulates probe results of one session. Min and max only
// exist once a reply was received.
type Statistics struct {
	Sent     int
	Received int
	sum      int64
	min      int64
	max      int64
}

func (s *Statistics) Add(r ProbeResult) {
	s.Sent++
	if r.TimedOut {
		return
	}
	ms := r.Millis()
	if s.Received == 0 || ms < s.min {
		s.min = ms
	}
	if s.Received == 0 || ms > s.max {
		s.max = ms
	}
	s.Received++
	s.sum += ms
}

func (s *Statistics) Min() (int64, bool) {
	return s.min, s.Received > 0
}

func (s *Statistics) Max() (int64, bool) {
	return s.max, s.Received > 0
}

func (s *Statistics) Lost() int {
	return s.Sent - s.Received
}

type Summary struct {
	Sent        int    `json:"sent"`
	Received    int    `json:"received"`
	Lost        int    `json:"lost"`
	LossPercent int64  `json:"loss_percent"`
	MinMs       *int64 `json:"min_ms,omitempty"`
	MaxMs       *int64 `json:"max_ms,omitempty"`
	AvgMs       *int64 `json:"avg_ms,omitempty"`
}

// Summary finalizes the statistics. The loss is divided by the payload size
// rather than the sent count, reproducing the reports this tool replaces
// (see DESIGN.md); a zero size falls back to the sent count. The average is
// taken over every probe sent, timeouts included.
func (s *Statistics) Summary(size int) Summary {
	sum := Summary{
		Sent:     s.Sent,
		Received: s.Received,
		Lost:     s.Lost(),
	}
	divisor := size
	if divisor <= 0 {
		divisor = s.Sent
	}
	if divisor > 0 {
		sum.LossPercent = common.Round(float64(sum.Lost) / float64(divisor) * 100)
	}
	if s.Received > 0 {
		min, max := s.min, s.max
		avg := common.Round(float64(s.sum) / float64(s.Sent))
		sum.MinMs, sum.MaxMs, sum.AvgMs = &min, &max, &avg
	}
	return sum
}
