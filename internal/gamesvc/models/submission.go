package models

import (
	"time"

	"github.com/google/uuid"
)

type Submission struct {
	ID            uuid.UUID `json:"id"`             // Primary key
	RoomID        uuid.UUID `json:"room_id"`        // FK to rooms(id)
	PlayerID      string    `json:"player_id"`      // Submitting user
	Round         int       `json:"round"`          // Unique with (room_id, player_id)
	Prompt        string    `json:"prompt"`         // The text prompt the player wrote
	ImageURL      string    `json:"image_url"`      // Generated image reference
	AccuracyScore float64   `json:"accuracy_score"` // 0-100, from the external similarity scorer
	VotesReceived int       `json:"votes_received"` // Derived, recomputed from the vote ledger
	CreatedAt     time.Time `json:"created_at"`     // Timestamp
	UpdatedAt     time.Time `json:"updated_at"`     // Timestamp
}
