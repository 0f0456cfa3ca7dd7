package models

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID           uuid.UUID `json:"id"`            // Primary key
	RoomID       uuid.UUID `json:"room_id"`       // FK to rooms(id)
	VoterID      string    `json:"voter_id"`      // Unique with (room_id, round) - one vote per player per round
	Round        int       `json:"round"`         // Round the vote belongs to
	SubmissionID uuid.UUID `json:"submission_id"` // Must belong to a different player in the same room
	CreatedAt    time.Time `json:"created_at"`    // Timestamp
	UpdatedAt    time.Time `json:"updated_at"`    // Timestamp
}
