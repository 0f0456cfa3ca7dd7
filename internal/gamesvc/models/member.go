package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomMember struct {
	ID       uuid.UUID `json:"id"`        // Primary key
	RoomID   uuid.UUID `json:"room_id"`   // FK to rooms(id)
	UserID   string    `json:"user_id"`   // Stable user id from the identity provider
	Username string    `json:"username"`  // Joined from profiles for rosters
	JoinedAt time.Time `json:"joined_at"` // Ordering drives owner promotion
}
