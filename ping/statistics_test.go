package ping

import (
	"testing"
	"time"
)

func ms(n int) ProbeResult {
	return ProbeResult{RTT: time.Duration(n)*time.Millisecond + 300*time.Microsecond}
}

func TestStatisticsAdd(t *testing.T) {
	var s Statistics
	if _, ok := s.Min(); ok {
		t.Fatal("empty statistics have a minimum")
	}
	s.Add(ms(20))
	s.Add(ProbeResult{TimedOut: true})
	s.Add(ms(5))
	s.Add(ms(41))
	if s.Sent != 4 || s.Received != 3 || s.Lost() != 1 {
		t.Errorf("sent/received/lost = %d/%d/%d", s.Sent, s.Received, s.Lost())
	}
	if min, ok := s.Min(); !ok || min != 5 {
		t.Errorf("Min = %d, %v", min, ok)
	}
	if max, ok := s.Max(); !ok || max != 41 {
		t.Errorf("Max = %d, %v", max, ok)
	}
}

func TestStatisticsSummary(t *testing.T) {
	var s Statistics
	for _, n := range []int{1, 2, 2} {
		s.Add(ms(n))
	}
	s.Add(ProbeResult{TimedOut: true})
	sum := s.Summary(32)
	// 1 / 32 * 100 = 3.125
	if sum.LossPercent != 3 {
		t.Errorf("LossPercent = %d, want 3", sum.LossPercent)
	}
	// 5 / 4 = 1.25, timeouts count in the divisor
	if sum.AvgMs == nil || *sum.AvgMs != 1 {
		t.Errorf("AvgMs = %v, want 1", sum.AvgMs)
	}
	if *sum.MinMs != 1 || *sum.MaxMs != 2 {
		t.Errorf("min/max = %d/%d", *sum.MinMs, *sum.MaxMs)
	}
}

func TestStatisticsRoundHalfEven(t *testing.T) {
	var s Statistics
	s.Add(ms(2))
	s.Add(ms(3))
	s.Add(ms(2))
	s.Add(ms(3))
	// 10 / 4 = 2.5
	if got := *s.Summary(32).AvgMs; got != 2 {
		t.Errorf("AvgMs = %d, want 2", got)
	}
	var lost Statistics
	for i := 0; i < 3; i++ {
		lost.Add(ProbeResult{TimedOut: true})
	}
	// 3 / 8 * 100 = 37.5
	if got := lost.Summary(8).LossPercent; got != 38 {
		t.Errorf("LossPercent = %d, want 38", got)
	}
}

func TestStatisticsEmptySummary(t *testing.T) {
	var s Statistics
	sum := s.Summary(0)
	if sum.Sent != 0 || sum.LossPercent != 0 || sum.MinMs != nil {
		t.Errorf("summary of nothing = %+v", sum)
	}
}
