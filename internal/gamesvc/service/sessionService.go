package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

// SessionService owns phase progression. Every transition is one of three
// kinds: owner-requested, timeout-driven (the sweep) or completion-driven
// (all players voted, handled by the ledger). All three go through the same
// conditional phase update, so a transition never applies against a phase
// the initiator did not observe.
type SessionService struct {
	rooms     RoomStore
	sessions  SessionStore
	publisher Publisher
}

func NewSessionService(rooms RoomStore, sessions SessionStore, publisher Publisher) *SessionService {
	return &SessionService{rooms: rooms, sessions: sessions, publisher: publisher}
}

// RequestPhase applies an owner-requested transition. The requested phase
// must be the direct successor of the phase currently stored; anything else
// is rejected. A concurrent transition that got there first surfaces as
// ErrStaleState and the caller should refetch.
func (s *SessionService) RequestPhase(ctx context.Context, roomID uuid.UUID, requestedBy, newPhase string, duration int) (*models.Session, error) {
	room, err := s.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if room.OwnerID != requestedBy {
		return nil, fmt.Errorf("%w: phase changes are owner-only", ErrNotOwner)
	}

	sess, err := s.sessions.GetSessionByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	current := models.PhaseWaiting
	if sess != nil {
		current = sess.CurrentPhase
	}
	next, ok := models.NextPhase(current)
	if !ok || next != newPhase {
		return nil, fmt.Errorf("%w: %s does not follow %s", ErrWrongPhase, newPhase, current)
	}
	if duration <= 0 {
		duration = models.DefaultDuration(newPhase)
	}

	var advanced *models.Session
	if sess == nil {
		// first round for this room: attach a session in one shot
		advanced, err = s.sessions.CreateSession(ctx, roomID, newPhase, duration)
		if err != nil {
			return nil, err
		}
		if advanced != nil {
			if err := s.rooms.UpdateRoomStatus(ctx, roomID, newPhase); err != nil {
				log.Errorf("failed to mirror phase on room %s: %v", roomID, err)
			}
		}
	} else {
		advanced, err = s.sessions.AdvancePhase(ctx, roomID, current, newPhase, duration, current == models.PhaseResults)
		if err != nil {
			return nil, err
		}
	}
	if advanced == nil {
		return nil, fmt.Errorf("%w: phase is no longer %s", ErrStaleState, current)
	}

	s.publishPhase(advanced, comm.ReasonOwner)
	return advanced, nil
}

// SweepTimeouts advances every session whose duration-bound phase has run
// out, judged by elapsed wall clock on the server. One room's failure never
// stops the sweep for the rest. Returns how many sessions advanced.
func (s *SessionService) SweepTimeouts(ctx context.Context) int {
	expired, err := s.sessions.ListExpiredSessions(ctx)
	if err != nil {
		log.Errorf("failed to list expired sessions: %v", err)
		return 0
	}

	advancedCount := 0
	for _, sess := range expired {
		next, ok := models.NextPhase(sess.CurrentPhase)
		if !ok {
			continue
		}
		advanced, err := s.sessions.AdvancePhase(ctx, sess.RoomID, sess.CurrentPhase, next,
			models.DefaultDuration(next), sess.CurrentPhase == models.PhaseResults)
		if err != nil {
			log.Errorf("failed to advance room %s on timeout: %v", sess.RoomID, err)
			continue
		}
		if advanced == nil {
			// someone advanced it between the listing and the update
			continue
		}
		advancedCount++
		s.publishPhase(advanced, comm.ReasonTimeout)
	}
	return advancedCount
}

// GetSession returns the live session for a room, or ErrNotFound when the
// room has none.
func (s *SessionService) GetSession(ctx context.Context, roomID uuid.UUID) (*models.Session, error) {
	sess, err := s.sessions.GetSessionByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: no session for room %s", ErrNotFound, roomID)
	}
	return sess, nil
}

func (s *SessionService) publishPhase(sess *models.Session, reason string) {
	ev := comm.NewRoomEvent(comm.EventPhaseChanged, sess.RoomID.String())
	ev.Phase = sess.CurrentPhase
	ev.Round = sess.Round
	ev.Reason = reason
	if err := s.publisher.PublishRoomEvent(ev); err != nil {
		log.Errorf("failed to publish phase event for room %s: %v", sess.RoomID, err)
	}
}
