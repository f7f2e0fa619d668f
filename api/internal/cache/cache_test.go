package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
)

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New("", zap.NewNop().Sugar())

	rec := &analysis.VerdictRecord{Verdict: analysis.VerdictReal, Confidence: 0.9}
	key := Key(analysis.Request{Text: "the moon landing happened"})

	c.Put(context.Background(), key, rec, DefaultTTL)
	got, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	c.Put(context.Background(), "k", &analysis.VerdictRecord{}, DefaultTTL)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestKeyDistinguishesRequests(t *testing.T) {
	a := Key(analysis.Request{Text: "claim one"})
	b := Key(analysis.Request{Text: "claim two"})
	c := Key(analysis.Request{Text: "claim one", TargetLanguage: "hi-IN"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Key(analysis.Request{Text: "claim one"}))
}
