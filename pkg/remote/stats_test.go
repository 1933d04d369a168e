package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHitRateEmptyIsZero(t *testing.T) {
	var s Stats
	assert.Zero(t, s.Snapshot().HitRate())
}

func TestHitRate(t *testing.T) {
	var s Stats
	s.hit()
	s.hit()
	s.hit()
	s.miss()

	snap := s.Snapshot()
	assert.Equal(t, int64(3), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.InDelta(t, 0.75, snap.HitRate(), 1e-9)
}

func TestStatsAccumulate(t *testing.T) {
	var s Stats
	s.addBytes(100)
	s.addBytes(50)
	s.addTime(2 * time.Second)

	snap := s.Snapshot()
	assert.Equal(t, int64(150), snap.BytesTransferred)
	assert.Equal(t, 2*time.Second, snap.TimeSaved)
}
