package models

import "time"

// CleanupAudit is one reaper run, persisted to the audit collection.
type CleanupAudit struct {
	CleanupId          string    `bson:"cleanup_id" json:"cleanup_id"`
	Trigger            string    `bson:"trigger" json:"trigger"` // 'scheduled' or 'manual'
	CleanedRooms       int       `bson:"cleaned_rooms" json:"cleaned_rooms"`
	CleanedSessions    int       `bson:"cleaned_sessions" json:"cleaned_sessions"`
	CleanedPlayers     int       `bson:"cleaned_players" json:"cleaned_players"`
	CleanedVotes       int       `bson:"cleaned_votes" json:"cleaned_votes"`
	CleanedSubmissions int       `bson:"cleaned_submissions" json:"cleaned_submissions"`
	FailedRooms        int       `bson:"failed_rooms" json:"failed_rooms"`
	ExecutionTimeMs    int64     `bson:"execution_time_ms" json:"execution_time_ms"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt          time.Time `bson:"expires_at" json:"expires_at"` // TTL index field
}
