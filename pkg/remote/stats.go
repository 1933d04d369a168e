package remote

import (
	"sync/atomic"
	"time"
)

// Stats tracks cumulative fetch counters for one fetcher. Counters are only
// reset by constructing a new value.
type Stats struct {
	hits             atomic.Int64
	misses           atomic.Int64
	bytesTransferred atomic.Int64
	timeSaved        atomic.Int64 // nanoseconds
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Hits             int64
	Misses           int64
	BytesTransferred int64
	TimeSaved        time.Duration
}

// HitRate returns hits / (hits + misses), and 0 when no requests have
// occurred.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s *Stats) hit()  { s.hits.Add(1) }
func (s *Stats) miss() { s.misses.Add(1) }

func (s *Stats) addBytes(n int64)        { s.bytesTransferred.Add(n) }
func (s *Stats) addTime(d time.Duration) { s.timeSaved.Add(int64(d)) }

// Snapshot returns a consistent-enough copy of the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:             s.hits.Load(),
		Misses:           s.misses.Load(),
		BytesTransferred: s.bytesTransferred.Load(),
		TimeSaved:        time.Duration(s.timeSaved.Load()),
	}
}
