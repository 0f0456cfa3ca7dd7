package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type SubmissionStore struct {
	db *pgxpool.Pool
}

func NewSubmissionStore(db *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionColumns = `id, room_id, player_id, round, prompt, image_url, accuracy_score, votes_received, created_at, updated_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	sub := &models.Submission{}
	err := row.Scan(
		&sub.ID,
		&sub.RoomID,
		&sub.PlayerID,
		&sub.Round,
		&sub.Prompt,
		&sub.ImageURL,
		&sub.AccuracyScore,
		&sub.VotesReceived,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// UpsertSubmission writes the unique (room, player, round) entry. A player
// re-submitting within the round overwrites prompt, image and score; only
// the last submitted entry persists for voting.
func (s *SubmissionStore) UpsertSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (room_id, player_id, round, prompt, image_url, accuracy_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id, player_id, round)
		DO UPDATE SET prompt = EXCLUDED.prompt,
		              image_url = EXCLUDED.image_url,
		              accuracy_score = EXCLUDED.accuracy_score,
		              updated_at = now()
		RETURNING ` + submissionColumns

	saved, err := scanSubmission(s.db.QueryRow(ctx, query,
		sub.RoomID, sub.PlayerID, sub.Round, sub.Prompt, sub.ImageURL, sub.AccuracyScore,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert submission: %w", err)
	}
	return saved, nil
}

func (s *SubmissionStore) GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(s.db.QueryRow(ctx, query, submissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // submission not found
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

func (s *SubmissionStore) ListSubmissions(ctx context.Context, roomID uuid.UUID, round int) ([]*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE room_id = $1 AND round = $2
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, roomID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
