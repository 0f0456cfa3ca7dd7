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

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `id, room_id, current_phase, phase_start_time, phase_duration, round, last_activity, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	sess := &models.Session{}
	err := row.Scan(
		&sess.ID,
		&sess.RoomID,
		&sess.CurrentPhase,
		&sess.PhaseStartTime,
		&sess.PhaseDuration,
		&sess.Round,
		&sess.LastActivity,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateSession inserts the one session row a room may have. When a session
// already exists nothing is inserted and (nil, nil) is returned, so a racing
// creator can detect it lost.
func (s *SessionStore) CreateSession(ctx context.Context, roomID uuid.UUID, phase string, duration int) (*models.Session, error) {
	query := `
		INSERT INTO sessions (room_id, current_phase, phase_start_time, phase_duration, round)
		VALUES ($1, $2, now(), $3, 1)
		ON CONFLICT (room_id) DO NOTHING
		RETURNING ` + sessionColumns

	sess, err := scanSession(s.db.QueryRow(ctx, query, roomID, phase, duration))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // a session already exists for this room
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) GetSessionByRoomID(ctx context.Context, roomID uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE room_id = $1`

	sess, err := scanSession(s.db.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no live session
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// AdvancePhase moves the session from fromPhase to toPhase as one conditional
// update: it matches only while current_phase is still fromPhase, so of two
// concurrent attempts exactly one succeeds. The room status row is updated in
// the same transaction to keep it mirroring the phase. Returns (nil, nil)
// when the guard did not match.
func (s *SessionStore) AdvancePhase(ctx context.Context, roomID uuid.UUID, fromPhase, toPhase string, duration int, bumpRound bool) (*models.Session, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin phase advance: %w", err)
	}
	defer tx.Rollback(ctx)

	bump := 0
	if bumpRound {
		bump = 1
	}

	query := `
		UPDATE sessions
		SET current_phase = $3,
		    phase_start_time = now(),
		    phase_duration = $4,
		    round = round + $5,
		    last_activity = now(),
		    updated_at = now()
		WHERE room_id = $1 AND current_phase = $2
		RETURNING ` + sessionColumns

	sess, err := scanSession(tx.QueryRow(ctx, query, roomID, fromPhase, toPhase, duration, bump))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // lost the race, phase moved under us
		}
		return nil, fmt.Errorf("failed to advance phase: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE rooms SET status = $2, last_activity = now(), updated_at = now() WHERE id = $1`,
		roomID, toPhase,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mirror phase on room: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit phase advance: %w", err)
	}
	return sess, nil
}

// ListExpiredSessions returns sessions whose duration-bound phase has run
// past its deadline, judged by elapsed wall clock on the server.
func (s *SessionStore) ListExpiredSessions(ctx context.Context) ([]*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE current_phase IN ($1, $2)
		  AND phase_duration > 0
		  AND phase_start_time + make_interval(secs => phase_duration) <= now()
	`

	rows, err := s.db.Query(ctx, query, models.PhasePlaying, models.PhaseResults)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// TouchActivity refreshes the session liveness timestamp.
func (s *SessionStore) TouchActivity(ctx context.Context, roomID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE sessions SET last_activity = now(), updated_at = now() WHERE room_id = $1`, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session activity: %w", err)
	}
	return nil
}
