package receiver_test

import (
	"errors"
	"testing"
	"time"

	"github.com/LanXuage/gping/conn"
	"github.com/LanXuage/gping/conn/conntest"
	"github.com/LanXuage/gping/icmp"
	"github.com/LanXuage/gping/receiver"
)

func newListener(timeout time.Duration) (*receiver.Listener, *conntest.Conn, *conntest.Clock) {
	clock := conntest.NewClock()
	c := conntest.New(clock)
	l := receiver.NewListener(c, timeout)
	l.Now = clock.Now
	return l, c, clock
}

func assertDecreasing(t *testing.T, budgets []time.Duration) {
	t.Helper()
	for i := 1; i < len(budgets); i++ {
		if budgets[i] >= budgets[i-1] {
			t.Errorf("budget did not shrink: %v", budgets)
			return
		}
	}
}

func TestWaitForReply(t *testing.T) {
	l, c, clock := newListener(2 * time.Second)
	c.Push(conntest.Reply(c.Src, 57, icmp.TypeEchoReply, 1, 1, nil), 30*time.Millisecond)
	start := clock.Now()
	reply, err := l.WaitForReply(1)
	if err != nil {
		t.Fatal(err)
	}
	if reply.TTL != 57 {
		t.Errorf("TTL = %d, want 57", reply.TTL)
	}
	if got := reply.Received.Sub(start); got != 30*time.Millisecond {
		t.Errorf("received after %v, want 30ms", got)
	}
	if len(c.Budgets) != 1 || c.Budgets[0] != 2*time.Second {
		t.Errorf("budgets = %v", c.Budgets)
	}
}

func TestWaitForReplyIgnoresMismatch(t *testing.T) {
	l, c, _ := newListener(2 * time.Second)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 2, nil), 100*time.Millisecond)
	c.Push(conntest.Reply(c.Src, 64, 3, 0, 1, nil), 100*time.Millisecond)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoRequest, 1, 1, nil), 100*time.Millisecond)
	c.Push([]byte{0x45, 0x00}, 100*time.Millisecond)
	c.Push(conntest.Reply(c.Src, 51, icmp.TypeEchoReply, 1, 1, nil), 100*time.Millisecond)
	reply, err := l.WaitForReply(1)
	if err != nil {
		t.Fatal(err)
	}
	if reply.TTL != 51 {
		t.Errorf("matched the wrong datagram, TTL = %d", reply.TTL)
	}
	if len(c.Budgets) != 5 {
		t.Fatalf("polled %d times, want 5", len(c.Budgets))
	}
	if c.Budgets[4] != 1600*time.Millisecond {
		t.Errorf("last budget = %v, want 1.6s", c.Budgets[4])
	}
	assertDecreasing(t, c.Budgets)
}

func TestWaitForReplyTimeout(t *testing.T) {
	l, c, clock := newListener(2 * time.Second)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 7, nil), 500*time.Millisecond)
	start := clock.Now()
	_, err := l.WaitForReply(1)
	if !errors.Is(err, receiver.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if got := clock.Now().Sub(start); got != 2*time.Second {
		t.Errorf("waited %v, want 2s", got)
	}
	assertDecreasing(t, c.Budgets)
}

func TestWaitForReplyLateArrival(t *testing.T) {
	l, c, _ := newListener(time.Second)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 1, nil), 1500*time.Millisecond)
	if _, err := l.WaitForReply(1); !errors.Is(err, receiver.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestWaitForReplyExhaustedBudget(t *testing.T) {
	l, c, _ := newListener(0)
	if _, err := l.WaitForReply(1); !errors.Is(err, receiver.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if len(c.Budgets) != 0 {
		t.Errorf("polled with budgets %v", c.Budgets)
	}
}

func TestWaitForReplyClosed(t *testing.T) {
	l, c, _ := newListener(time.Second)
	c.Close()
	_, err := l.WaitForReply(1)
	if !errors.Is(err, conn.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestWaitForReplyLateAndDuplicate(t *testing.T) {
	l, c, clock := newListener(time.Second)
	l.Tracker.Sent(1, clock.Now())
	l.Tracker.Sent(2, clock.Now())
	l.Tracker.Answer(2)
	l.Tracker.Sent(3, clock.Now())
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 1, nil), 0)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 2, nil), 0)
	c.Push(conntest.Reply(c.Src, 64, icmp.TypeEchoReply, 1, 3, nil), 0)
	if _, err := l.WaitForReply(3); err != nil {
		t.Fatal(err)
	}
	if l.Tracker.InFlight(1) || !l.Tracker.Answered(1) {
		t.Error("late reply 1 not accounted")
	}
	if l.Tracker.Pending() != 0 {
		t.Errorf("pending = %d, want 0", l.Tracker.Pending())
	}
}
