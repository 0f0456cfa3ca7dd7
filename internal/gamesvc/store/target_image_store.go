package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type TargetImageStore struct {
	db *pgxpool.Pool
}

func NewTargetImageStore(db *pgxpool.Pool) *TargetImageStore {
	return &TargetImageStore{db: db}
}

// GetRandomByDifficulty picks one target image at the requested difficulty.
func (s *TargetImageStore) GetRandomByDifficulty(ctx context.Context, difficulty string) (*models.TargetImage, error) {
	query := `
		SELECT id, url, difficulty, description, created_at
		FROM target_images
		WHERE difficulty = $1
		ORDER BY random()
		LIMIT 1
	`

	img := &models.TargetImage{}
	err := s.db.QueryRow(ctx, query, difficulty).Scan(
		&img.ID,
		&img.URL,
		&img.Difficulty,
		&img.Description,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no image seeded for this difficulty
		}
		return nil, fmt.Errorf("failed to get target image: %w", err)
	}
	return img, nil
}
