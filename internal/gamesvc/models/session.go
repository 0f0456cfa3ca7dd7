package models

import (
	"time"

	"github.com/google/uuid"
)

// Game phases, in cycle order.
const (
	PhaseWaiting = "waiting"
	PhasePlaying = "playing"
	PhaseVoting  = "voting"
	PhaseResults = "results"
)

// Default phase durations in seconds. Voting has no duration; it advances
// on completion or owner override only.
const (
	DefaultPlayingDuration = 180
	DefaultResultsDuration = 60
)

type Session struct {
	ID             uuid.UUID `json:"id"`               // Primary key
	RoomID         uuid.UUID `json:"room_id"`          // FK to rooms(id), unique - one live session per room
	CurrentPhase   string    `json:"current_phase"`    // 'waiting', 'playing', 'voting', 'results'
	PhaseStartTime time.Time `json:"phase_start_time"` // Wall clock start of the current phase
	PhaseDuration  int       `json:"phase_duration"`   // Seconds; 0 means no timeout
	Round          int       `json:"round"`            // Submissions and votes are tagged with this
	LastActivity   time.Time `json:"last_activity"`    // Timestamp
	CreatedAt      time.Time `json:"created_at"`       // Timestamp
	UpdatedAt      time.Time `json:"updated_at"`       // Timestamp
}

// NextPhase returns the only legal successor of a phase. The cycle is
// waiting -> playing -> voting -> results -> waiting.
func NextPhase(phase string) (string, bool) {
	switch phase {
	case PhaseWaiting:
		return PhasePlaying, true
	case PhasePlaying:
		return PhaseVoting, true
	case PhaseVoting:
		return PhaseResults, true
	case PhaseResults:
		return PhaseWaiting, true
	}
	return "", false
}

// DefaultDuration returns the server-side default duration for a phase.
func DefaultDuration(phase string) int {
	switch phase {
	case PhasePlaying:
		return DefaultPlayingDuration
	case PhaseResults:
		return DefaultResultsDuration
	}
	return 0
}

// Deadline returns the wall-clock end of the phase, or zero time when the
// phase has no timeout.
func (s *Session) Deadline() time.Time {
	if s.PhaseDuration <= 0 {
		return time.Time{}
	}
	return s.PhaseStartTime.Add(time.Duration(s.PhaseDuration) * time.Second)
}
