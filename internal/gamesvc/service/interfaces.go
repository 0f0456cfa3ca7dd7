package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
	"github.com/promptfighter/game-services/internal/gamesvc/store"
)

// Store contracts the services depend on. The pgx stores in the store
// package implement them; tests substitute in-memory fakes.

type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	GetRoomByID(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	GetRoomByJoinCode(ctx context.Context, joinCode string) (*models.Room, error)
	JoinCodeExists(ctx context.Context, joinCode string) (bool, error)
	ListRoomsByStatus(ctx context.Context, status string) ([]*models.Room, error)
	UpdateRoomOwner(ctx context.Context, roomID uuid.UUID, ownerID string) error
	UpdateRoomStatus(ctx context.Context, roomID uuid.UUID, status string) error
	TouchActivity(ctx context.Context, roomID uuid.UUID) error
	ListIdleRooms(ctx context.Context, cutoff time.Time) ([]*models.Room, error)
	PurgeRoom(ctx context.Context, roomID uuid.UUID) (store.PurgeCounts, error)
}

type MemberStore interface {
	AddMember(ctx context.Context, roomID uuid.UUID, userID string) (*models.RoomMember, error)
	RemoveMember(ctx context.Context, roomID uuid.UUID, userID string) (bool, error)
	ListMembers(ctx context.Context, roomID uuid.UUID) ([]*models.RoomMember, error)
	CountMembers(ctx context.Context, roomID uuid.UUID) (int, error)
	IsMember(ctx context.Context, roomID uuid.UUID, userID string) (bool, error)
	ActiveRoomForUser(ctx context.Context, userID string) (uuid.UUID, bool, error)
	EarliestMember(ctx context.Context, roomID uuid.UUID) (*models.RoomMember, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, roomID uuid.UUID, phase string, duration int) (*models.Session, error)
	GetSessionByRoomID(ctx context.Context, roomID uuid.UUID) (*models.Session, error)
	AdvancePhase(ctx context.Context, roomID uuid.UUID, fromPhase, toPhase string, duration int, bumpRound bool) (*models.Session, error)
	ListExpiredSessions(ctx context.Context) ([]*models.Session, error)
	TouchActivity(ctx context.Context, roomID uuid.UUID) error
}

type SubmissionStore interface {
	UpsertSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*models.Submission, error)
	ListSubmissions(ctx context.Context, roomID uuid.UUID, round int) ([]*models.Submission, error)
}

type VoteStore interface {
	CastVote(ctx context.Context, vote *models.Vote) (*models.Vote, error)
	VotingProgress(ctx context.Context, roomID uuid.UUID, round int) (totalPlayers, votedPlayers int, err error)
	CountMembersVoted(ctx context.Context, roomID uuid.UUID, round int) (int, error)
	ListVotes(ctx context.Context, roomID uuid.UUID, round int) ([]*models.Vote, error)
}

type TargetImageStore interface {
	GetRandomByDifficulty(ctx context.Context, difficulty string) (*models.TargetImage, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error)
}

type AuditStore interface {
	InsertAudit(ctx context.Context, audit *models.CleanupAudit) error
}

// Publisher fans a room event out to subscribed clients. Delivery is
// at-least-once and unordered across event classes; consumers re-fetch.
type Publisher interface {
	PublishRoomEvent(ev comm.RoomEvent) error
}
