package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

const joinCodeAttempts = 10

type RoomService struct {
	rooms     RoomStore
	members   MemberStore
	sessions  SessionStore
	targets   TargetImageStore
	publisher Publisher
}

func NewRoomService(rooms RoomStore, members MemberStore, sessions SessionStore,
	targets TargetImageStore, publisher Publisher) *RoomService {
	return &RoomService{
		rooms:     rooms,
		members:   members,
		sessions:  sessions,
		targets:   targets,
		publisher: publisher,
	}
}

// CreateRoom creates a room against a random target image of the requested
// difficulty and seats the owner as its first member.
func (s *RoomService) CreateRoom(ctx context.Context, name, gameMode, difficulty, ownerID string, maxPlayers int) (*models.Room, []*models.RoomMember, error) {
	if name == "" || ownerID == "" {
		return nil, nil, fmt.Errorf("%w: name and owner are required", ErrValidation)
	}
	if !models.ValidGameMode(gameMode) {
		return nil, nil, fmt.Errorf("%w: unknown game mode %q", ErrValidation, gameMode)
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, difficulty)
	}
	minPlayers := 2
	if gameMode == models.GameModeSolo {
		minPlayers = 1
	}
	if maxPlayers < minPlayers {
		return nil, nil, fmt.Errorf("%w: max_players must be at least %d for %s mode", ErrValidation, minPlayers, gameMode)
	}

	if _, inRoom, err := s.members.ActiveRoomForUser(ctx, ownerID); err != nil {
		return nil, nil, err
	} else if inRoom {
		return nil, nil, fmt.Errorf("%w: user is already in an active room", ErrValidation)
	}

	target, err := s.targets.GetRandomByDifficulty(ctx, difficulty)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, fmt.Errorf("%w: no target image for difficulty %s", ErrNotFound, difficulty)
	}

	joinCode, err := s.uniqueJoinCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	room, err := s.rooms.CreateRoom(ctx, &models.Room{
		Name:           name,
		JoinCode:       joinCode,
		OwnerID:        ownerID,
		GameMode:       gameMode,
		Difficulty:     difficulty,
		MaxPlayers:     maxPlayers,
		Status:         models.PhaseWaiting,
		TargetImageURL: target.URL,
	})
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.members.AddMember(ctx, room.ID, ownerID); err != nil {
		return nil, nil, err
	}

	s.publishMembership(room.ID)

	roster, err := s.members.ListMembers(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	return room, roster, nil
}

// JoinRoom resolves the code case-insensitively and seats the user. Joining
// a room you are already in returns the current state without a duplicate
// row.
func (s *RoomService) JoinRoom(ctx context.Context, joinCode, userID string) (*models.Room, []*models.RoomMember, error) {
	room, err := s.rooms.GetRoomByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, fmt.Errorf("%w: no room with code %s", ErrNotFound, joinCode)
	}
	if room.Status != models.PhaseWaiting {
		return nil, nil, fmt.Errorf("%w: round already in progress", ErrRoomNotJoinable)
	}

	member, err := s.members.IsMember(ctx, room.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		if otherRoom, inRoom, err := s.members.ActiveRoomForUser(ctx, userID); err != nil {
			return nil, nil, err
		} else if inRoom && otherRoom != room.ID {
			return nil, nil, fmt.Errorf("%w: user is already in an active room", ErrValidation)
		}

		_, err = s.members.AddMember(ctx, room.ID, userID)
		switch {
		case err == nil:
			if err := s.rooms.TouchActivity(ctx, room.ID); err != nil {
				log.Errorf("failed to touch room %s after join: %v", room.ID, err)
			}
			s.publishMembership(room.ID)
		case isAlreadyMember(err):
			// raced with ourselves, the join is already in place
		case isRoomAtCapacity(err):
			return nil, nil, fmt.Errorf("%w: %d/%d seats taken", ErrRoomFull, room.MaxPlayers, room.MaxPlayers)
		default:
			return nil, nil, err
		}
	}

	roster, err := s.members.ListMembers(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	return room, roster, nil
}

// LeaveRoom removes the membership. It reports false without error when the
// user was not a member. When the owner leaves, ownership is promoted to
// the earliest remaining joiner; an emptied room is left for the reaper.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID uuid.UUID, userID string) (bool, error) {
	room, err := s.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}

	removed, err := s.members.RemoveMember(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	if room.OwnerID == userID {
		next, err := s.members.EarliestMember(ctx, roomID)
		if err != nil {
			return true, err
		}
		if next != nil {
			if err := s.rooms.UpdateRoomOwner(ctx, roomID, next.UserID); err != nil {
				return true, err
			}
			log.Infof("room %s owner left, promoted %s", roomID, next.UserID)
		}
	}

	if err := s.rooms.TouchActivity(ctx, roomID); err != nil {
		log.Errorf("failed to touch room %s after leave: %v", roomID, err)
	}
	s.publishMembership(roomID)
	return true, nil
}

// ListJoinable returns rooms still waiting for players.
func (s *RoomService) ListJoinable(ctx context.Context) ([]*models.Room, error) {
	return s.rooms.ListRoomsByStatus(ctx, models.PhaseWaiting)
}

// GetRoomState returns the room, its roster and its session, if one is live.
func (s *RoomService) GetRoomState(ctx context.Context, roomID uuid.UUID) (*comm.RoomState, error) {
	room, err := s.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}

	members, err := s.members.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetSessionByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return &comm.RoomState{Room: room, Members: members, Session: sess}, nil
}

func (s *RoomService) uniqueJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code := NewJoinCode()
		exists, err := s.rooms.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique join code after %d attempts", joinCodeAttempts)
}

func (s *RoomService) publishMembership(roomID uuid.UUID) {
	if err := s.publisher.PublishRoomEvent(comm.NewRoomEvent(comm.EventMembershipChanged, roomID.String())); err != nil {
		log.Errorf("failed to publish membership event for room %s: %v", roomID, err)
	}
}
