package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

// ErrRoomAtCapacity is returned when the capacity-guarded insert matched no
// room row with free seats.
var ErrRoomAtCapacity = errors.New("room at capacity")

// ErrAlreadyMember is returned when the (room_id, user_id) row already exists.
var ErrAlreadyMember = errors.New("already a member")

type MemberStore struct {
	db *pgxpool.Pool
}

func NewMemberStore(db *pgxpool.Pool) *MemberStore {
	return &MemberStore{db: db}
}

// AddMember inserts a membership row while holding the room row lock, so the
// capacity check and the insert are a single atomic step.
// It fails with ErrRoomAtCapacity when the room is full (or gone) and with
// ErrAlreadyMember on the unique (room_id, user_id) constraint.
func (s *MemberStore) AddMember(ctx context.Context, roomID uuid.UUID, userID string) (*models.RoomMember, error) {
	const query = `
WITH locked_room AS (
  SELECT id, max_players
  FROM rooms
  WHERE id = $1
  FOR UPDATE
)
INSERT INTO room_members (room_id, user_id)
SELECT lr.id, $2
FROM locked_room lr
WHERE (SELECT count(*) FROM room_members m WHERE m.room_id = lr.id) < lr.max_players
RETURNING id, room_id, user_id, joined_at;
`
	m := &models.RoomMember{}
	err := s.db.QueryRow(ctx, query, roomID, userID).Scan(
		&m.ID,
		&m.RoomID,
		&m.UserID,
		&m.JoinedAt,
	)
	if err != nil {
		// zero rows means the room is full or does not exist
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomAtCapacity
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return m, nil
}

// RemoveMember deletes the membership row and reports whether one existed.
func (s *MemberStore) RemoveMember(ctx context.Context, roomID uuid.UUID, userID string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`, roomID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MemberStore) ListMembers(ctx context.Context, roomID uuid.UUID) ([]*models.RoomMember, error) {
	query := `
		SELECT m.id, m.room_id, m.user_id, coalesce(p.username, ''), m.joined_at
		FROM room_members m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at
	`

	rows, err := s.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.RoomMember
	for rows.Next() {
		var m models.RoomMember
		err := rows.Scan(
			&m.ID,
			&m.RoomID,
			&m.UserID,
			&m.Username,
			&m.JoinedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *MemberStore) CountMembers(ctx context.Context, roomID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM room_members WHERE room_id = $1`, roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

func (s *MemberStore) IsMember(ctx context.Context, roomID uuid.UUID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ActiveRoomForUser returns the id of the room the user currently belongs
// to, if any. A user may belong to at most one room at a time.
func (s *MemberStore) ActiveRoomForUser(ctx context.Context, userID string) (uuid.UUID, bool, error) {
	var roomID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT room_id FROM room_members WHERE user_id = $1 LIMIT 1`, userID,
	).Scan(&roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to find active room: %w", err)
	}
	return roomID, true, nil
}

// EarliestMember returns the longest-standing member of a room, used for
// owner promotion when the owner leaves.
func (s *MemberStore) EarliestMember(ctx context.Context, roomID uuid.UUID) (*models.RoomMember, error) {
	query := `
		SELECT id, room_id, user_id, joined_at
		FROM room_members
		WHERE room_id = $1
		ORDER BY joined_at
		LIMIT 1
	`

	m := &models.RoomMember{}
	err := s.db.QueryRow(ctx, query, roomID).Scan(
		&m.ID,
		&m.RoomID,
		&m.UserID,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // room is empty
		}
		return nil, fmt.Errorf("failed to get earliest member: %w", err)
	}
	return m, nil
}
