package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type RoomStore struct {
	db *pgxpool.Pool
}

func NewRoomStore(db *pgxpool.Pool) *RoomStore {
	return &RoomStore{db: db}
}

const roomColumns = `id, name, join_code, owner_id, game_mode, difficulty, max_players, status, target_image_url, last_activity, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	r := &models.Room{}
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.JoinCode,
		&r.OwnerID,
		&r.GameMode,
		&r.Difficulty,
		&r.MaxPlayers,
		&r.Status,
		&r.TargetImageURL,
		&r.LastActivity,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RoomStore) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	query := `
		INSERT INTO rooms (name, join_code, owner_id, game_mode, difficulty, max_players, status, target_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + roomColumns

	created, err := scanRoom(s.db.QueryRow(ctx, query,
		room.Name, room.JoinCode, room.OwnerID, room.GameMode,
		room.Difficulty, room.MaxPlayers, room.Status, room.TargetImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return created, nil
}

func (s *RoomStore) GetRoomByID(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(s.db.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // room not found
		}
		return nil, fmt.Errorf("failed to get room by ID: %w", err)
	}
	return room, nil
}

// GetRoomByJoinCode resolves a join code case-insensitively, regardless of
// room status. The caller decides whether the room is joinable.
func (s *RoomStore) GetRoomByJoinCode(ctx context.Context, joinCode string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE join_code = upper($1)`

	room, err := scanRoom(s.db.QueryRow(ctx, query, joinCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room by join code: %w", err)
	}
	return room, nil
}

func (s *RoomStore) JoinCodeExists(ctx context.Context, joinCode string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE join_code = upper($1))`, joinCode,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check join code: %w", err)
	}
	return exists, nil
}

func (s *RoomStore) ListRoomsByStatus(ctx context.Context, status string) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var out []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *RoomStore) UpdateRoomStatus(ctx context.Context, roomID uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE rooms SET status = $2, last_activity = now(), updated_at = now() WHERE id = $1`,
		roomID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return nil
}

func (s *RoomStore) UpdateRoomOwner(ctx context.Context, roomID uuid.UUID, ownerID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE rooms SET owner_id = $2, updated_at = now() WHERE id = $1`,
		roomID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room owner: %w", err)
	}
	return nil
}

// TouchActivity refreshes the liveness timestamp the reaper checks.
func (s *RoomStore) TouchActivity(ctx context.Context, roomID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE rooms SET last_activity = now(), updated_at = now() WHERE id = $1`, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch room activity: %w", err)
	}
	return nil
}

func (s *RoomStore) ListIdleRooms(ctx context.Context, cutoff time.Time) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE last_activity < $1 ORDER BY last_activity`

	rows, err := s.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list idle rooms: %w", err)
	}
	defer rows.Close()

	var out []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// PurgeCounts reports the rows removed for one room.
type PurgeCounts struct {
	Votes       int
	Submissions int
	Members     int
	Sessions    int
	Rooms       int
}

// PurgeRoom removes a room and everything scoped to it in one transaction.
func (s *RoomStore) PurgeRoom(ctx context.Context, roomID uuid.UUID) (PurgeCounts, error) {
	var counts PurgeCounts

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to begin purge: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM votes WHERE room_id = $1`, roomID)
	if err != nil {
		return counts, fmt.Errorf("failed to purge votes: %w", err)
	}
	counts.Votes = int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM submissions WHERE room_id = $1`, roomID)
	if err != nil {
		return counts, fmt.Errorf("failed to purge submissions: %w", err)
	}
	counts.Submissions = int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM room_members WHERE room_id = $1`, roomID)
	if err != nil {
		return counts, fmt.Errorf("failed to purge members: %w", err)
	}
	counts.Members = int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM sessions WHERE room_id = $1`, roomID)
	if err != nil {
		return counts, fmt.Errorf("failed to purge session: %w", err)
	}
	counts.Sessions = int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return counts, fmt.Errorf("failed to purge room: %w", err)
	}
	counts.Rooms = int(tag.RowsAffected())

	if err := tx.Commit(ctx); err != nil {
		return counts, fmt.Errorf("failed to commit purge: %w", err)
	}
	return counts, nil
}
