package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextPhaseCycle(t *testing.T) {
	order := []string{PhaseWaiting, PhasePlaying, PhaseVoting, PhaseResults}
	for i, phase := range order {
		next, ok := NextPhase(phase)
		assert.True(t, ok)
		assert.Equal(t, order[(i+1)%len(order)], next)
	}

	_, ok := NextPhase("paused")
	assert.False(t, ok)
}

func TestDefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultPlayingDuration, DefaultDuration(PhasePlaying))
	assert.Equal(t, DefaultResultsDuration, DefaultDuration(PhaseResults))
	// waiting and voting have no timeout
	assert.Zero(t, DefaultDuration(PhaseWaiting))
	assert.Zero(t, DefaultDuration(PhaseVoting))
}

func TestSessionDeadline(t *testing.T) {
	start := time.Now()
	sess := &Session{PhaseStartTime: start, PhaseDuration: 180}
	assert.Equal(t, start.Add(3*time.Minute), sess.Deadline())

	sess.PhaseDuration = 0
	assert.True(t, sess.Deadline().IsZero())
}
