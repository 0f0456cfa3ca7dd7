package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

// CleanupAuditCollection is the TTL-indexed collection audit records land in.
const CleanupAuditCollection = "cleanup_audit"

// Audit records are operational history, not game state, so they live in the
// TTL-indexed mongo collection and age out on their own.
type AuditStore struct {
	db        *mongo.Database
	retention time.Duration
}

func NewAuditStore(db *mongo.Database, retention time.Duration) *AuditStore {
	return &AuditStore{db: db, retention: retention}
}

func (s *AuditStore) InsertAudit(ctx context.Context, audit *models.CleanupAudit) error {
	audit.CreatedAt = time.Now().UTC()
	audit.ExpiresAt = audit.CreatedAt.Add(s.retention)

	_, err := s.db.Collection(CleanupAuditCollection).InsertOne(ctx, audit)
	if err != nil {
		return fmt.Errorf("failed to insert cleanup audit: %w", err)
	}
	return nil
}
