package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, username, avatar_url, status, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	p := &models.Profile{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.AvatarURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // profile not found
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, username, avatar_url, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING user_id, username, avatar_url, status, created_at, updated_at
	`

	p := &models.Profile{}
	err := s.db.QueryRow(ctx, query,
		profile.UserID, profile.Username, profile.AvatarURL, profile.Status,
	).Scan(
		&p.UserID,
		&p.Username,
		&p.AvatarURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}
