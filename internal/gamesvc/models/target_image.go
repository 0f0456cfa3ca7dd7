package models

import (
	"time"

	"github.com/google/uuid"
)

type TargetImage struct {
	ID          uuid.UUID `json:"id"`          // Primary key
	URL         string    `json:"url"`         // Image location
	Difficulty  string    `json:"difficulty"`  // 'easy', 'medium', 'hard'
	Description string    `json:"description"` // Short hint shown after the round
	CreatedAt   time.Time `json:"created_at"`  // Timestamp
}
