package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type VoteStore struct {
	db *pgxpool.Pool
}

func NewVoteStore(db *pgxpool.Pool) *VoteStore {
	return &VoteStore{db: db}
}

// CastVote upserts the voter's unique (room, voter, round) slot and
// recomputes votes_received for every submission in the round, all in one
// transaction. Re-voting overwrites, it never duplicates.
func (s *VoteStore) CastVote(ctx context.Context, vote *models.Vote) (*models.Vote, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vote: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO votes (room_id, voter_id, round, submission_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, voter_id, round)
		DO UPDATE SET submission_id = EXCLUDED.submission_id, updated_at = now()
		RETURNING id, room_id, voter_id, round, submission_id, created_at, updated_at
	`

	saved := &models.Vote{}
	err = tx.QueryRow(ctx, query,
		vote.RoomID, vote.VoterID, vote.Round, vote.SubmissionID,
	).Scan(
		&saved.ID,
		&saved.RoomID,
		&saved.VoterID,
		&saved.Round,
		&saved.SubmissionID,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	// votes_received is derived state; recount the whole round so an
	// overwritten vote also decrements its previous target.
	recount := `
		UPDATE submissions s
		SET votes_received = coalesce(v.cnt, 0), updated_at = now()
		FROM submissions s2
		LEFT JOIN (
			SELECT submission_id, count(*) AS cnt
			FROM votes
			WHERE room_id = $1 AND round = $2
			GROUP BY submission_id
		) v ON v.submission_id = s2.id
		WHERE s.id = s2.id AND s2.room_id = $1 AND s2.round = $2
	`
	if _, err := tx.Exec(ctx, recount, vote.RoomID, vote.Round); err != nil {
		return nil, fmt.Errorf("failed to recount votes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	return saved, nil
}

// VotingProgress reports current member count against distinct voters this
// round. Voters who have since left the room still count as voted.
func (s *VoteStore) VotingProgress(ctx context.Context, roomID uuid.UUID, round int) (totalPlayers, votedPlayers int, err error) {
	err = s.db.QueryRow(ctx,
		`SELECT count(*) FROM room_members WHERE room_id = $1`, roomID,
	).Scan(&totalPlayers)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count players: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT count(DISTINCT voter_id) FROM votes WHERE room_id = $1 AND round = $2`,
		roomID, round,
	).Scan(&votedPlayers)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return totalPlayers, votedPlayers, nil
}

// CountMembersVoted counts only voters who are still members, which is what
// the completion trigger compares against the member total. Without this a
// round could never complete after a voter departs.
func (s *VoteStore) CountMembersVoted(ctx context.Context, roomID uuid.UUID, round int) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT count(DISTINCT v.voter_id)
		FROM votes v
		JOIN room_members m ON m.room_id = v.room_id AND m.user_id = v.voter_id
		WHERE v.room_id = $1 AND v.round = $2
	`, roomID, round).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count voted members: %w", err)
	}
	return n, nil
}

func (s *VoteStore) ListVotes(ctx context.Context, roomID uuid.UUID, round int) ([]*models.Vote, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, room_id, voter_id, round, submission_id, created_at, updated_at
		FROM votes
		WHERE room_id = $1 AND round = $2
	`, roomID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var out []*models.Vote
	for rows.Next() {
		var v models.Vote
		err := rows.Scan(
			&v.ID,
			&v.RoomID,
			&v.VoterID,
			&v.Round,
			&v.SubmissionID,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
