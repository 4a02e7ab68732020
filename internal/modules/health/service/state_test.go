package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	s := NewState()

	assert.False(t, s.Ready())
	assert.False(t, s.FeedUp())
	assert.True(t, s.LastCycle().IsZero())

	s.SetReady(true)
	s.SetFeedUp(true)
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	s.TouchCycle(now)

	assert.True(t, s.Ready())
	assert.True(t, s.FeedUp())
	assert.True(t, s.LastCycle().Equal(now))

	s.SetFeedUp(false)
	assert.False(t, s.FeedUp())
}
