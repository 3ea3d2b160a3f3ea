package receiver

import (
	"time"

	mapset "github.com/deckarep/golang-set"
	cmap "github.com/orcaman/concurrent-map/v2"
)

func shard(seq uint16) uint32 {
	return uint32(seq)
}

// Tracker remembers when each sequence was sent and which ones were answered,
// so that stray echo replies can be told apart.
type Tracker struct {
	inflight cmap.ConcurrentMap[uint16, time.Time] // 已发送未应答
	answered mapset.Set                            // 已应答序列号
}

func NewTracker() *Tracker {
	return &Tracker{
		inflight: cmap.NewWithCustomShardingFunction[uint16, time.Time](shard),
		answered: mapset.NewThreadUnsafeSet(),
	}
}

func (t *Tracker) Sent(seq uint16, at time.Time) {
	t.inflight.Set(seq, at)
	t.answered.Remove(seq)
}

// Answer marks seq answered and returns its send time.
func (t *Tracker) Answer(seq uint16) (time.Time, bool) {
	at, ok := t.inflight.Pop(seq)
	if ok {
		t.answered.Add(seq)
	}
	return at, ok
}

func (t *Tracker) InFlight(seq uint16) bool {
	return t.inflight.Has(seq)
}

func (t *Tracker) Answered(seq uint16) bool {
	return t.answered.Contains(seq)
}

func (t *Tracker) Pending() int {
	return t.inflight.Count()
}
