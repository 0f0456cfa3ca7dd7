package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	GameModeSolo = "solo"
	GameModeDuel = "duel"
	GameModeTeam = "team"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Room struct {
	ID             uuid.UUID `json:"id"`               // Primary key
	Name           string    `json:"name"`             // Display name
	JoinCode       string    `json:"join_code"`        // Short human-enterable code, stored upper-case
	OwnerID        string    `json:"owner_id"`         // User id of the room owner
	GameMode       string    `json:"game_mode"`        // 'solo', 'duel', 'team'
	Difficulty     string    `json:"difficulty"`       // 'easy', 'medium', 'hard'
	MaxPlayers     int       `json:"max_players"`      // Capacity, >= 2 for non-solo modes
	Status         string    `json:"status"`           // Mirrors the session phase
	TargetImageURL string    `json:"target_image_url"` // The hidden image players try to reproduce
	LastActivity   time.Time `json:"last_activity"`    // Touched by every mutation, drives the reaper
	CreatedAt      time.Time `json:"created_at"`       // Timestamp
	UpdatedAt      time.Time `json:"updated_at"`       // Timestamp
}

func ValidGameMode(mode string) bool {
	switch mode {
	case GameModeSolo, GameModeDuel, GameModeTeam:
		return true
	}
	return false
}

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
