package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() (*Store, *time.Time) {
	s := NewStore(zap.NewNop().Sugar())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestTouchUpserts(t *testing.T) {
	s, now := newTestStore()

	s.Touch("+1234567890", "first message")
	sess, ok := s.Get("+1234567890")
	require.True(t, ok)
	assert.Equal(t, "first message", sess.LastMessage)
	assert.Equal(t, *now, sess.LastSeen)

	*now = now.Add(time.Minute)
	s.Touch("+1234567890", "second message")
	sess, _ = s.Get("+1234567890")
	assert.Equal(t, "second message", sess.LastMessage)
	assert.Equal(t, *now, sess.LastSeen)
	assert.Equal(t, 1, s.Len())
}

func TestTouchIgnoresEmptyIdentity(t *testing.T) {
	s, _ := newTestStore()
	s.Touch("", "whatever")
	assert.Zero(t, s.Len())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	s, now := newTestStore()
	base := *now

	s.Touch("old", "a")
	*now = base.Add(12 * time.Hour)
	s.Touch("mid", "b")
	*now = base.Add(25 * time.Hour)
	s.Touch("fresh", "c")

	removed := s.Sweep(24 * time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("mid")
	assert.True(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
}

func TestSweepBoundaryIsStrict(t *testing.T) {
	s, now := newTestStore()
	base := *now

	s.Touch("exact", "a")
	*now = base.Add(24 * time.Hour)

	// age == maxAge exactly, must survive
	assert.Zero(t, s.Sweep(24*time.Hour))
	_, ok := s.Get("exact")
	assert.True(t, ok)

	*now = now.Add(time.Nanosecond)
	assert.Equal(t, 1, s.Sweep(24*time.Hour))
}
