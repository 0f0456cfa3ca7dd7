package models

import "time"

type Profile struct {
	UserID    string    `json:"user_id"`    // Primary key, from the identity provider
	Username  string    `json:"username"`   // Display name
	AvatarURL string    `json:"avatar_url"` // Optional avatar
	Status    string    `json:"status"`     // 'ACTIVE', 'DISABLED'
	CreatedAt time.Time `json:"created_at"` // Timestamp
	UpdatedAt time.Time `json:"updated_at"` // Timestamp
}
