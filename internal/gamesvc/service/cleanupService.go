package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// CleanupService reaps rooms whose last_activity has fallen outside the
// grace window. Liveness is judged by that single timestamp - every
// gameplay mutation touches it - so the reaper never needs to lock against
// live rooms.
type CleanupService struct {
	rooms     RoomStore
	audits    AuditStore
	publisher Publisher
	grace     time.Duration
}

func NewCleanupService(rooms RoomStore, audits AuditStore, publisher Publisher, grace time.Duration) *CleanupService {
	return &CleanupService{rooms: rooms, audits: audits, publisher: publisher, grace: grace}
}

// Sweep removes every idle room with its session, members, votes and
// submissions. A failing room is skipped and counted; the sweep always runs
// to the end, and one audit record is written per run.
func (s *CleanupService) Sweep(ctx context.Context, trigger string) (*comm.CleanupResult, error) {
	start := time.Now()
	cutoff := start.Add(-s.grace)

	idle, err := s.rooms.ListIdleRooms(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &comm.CleanupResult{
		CleanupId: uuid.NewString(),
		Trigger:   trigger,
	}
	failed := 0
	for _, room := range idle {
		counts, err := s.rooms.PurgeRoom(ctx, room.ID)
		if err != nil {
			log.Errorf("cleanup %s: failed to purge room %s: %v", result.CleanupId, room.ID, err)
			failed++
			continue
		}
		result.CleanedRooms += counts.Rooms
		result.CleanedSessions += counts.Sessions
		result.CleanedPlayers += counts.Members
		result.CleanedVotes += counts.Votes
		result.CleanedSubmissions += counts.Submissions

		if err := s.publisher.PublishRoomEvent(comm.NewRoomEvent(comm.EventRoomReaped, room.ID.String())); err != nil {
			log.Errorf("cleanup %s: failed to publish reap event for room %s: %v", result.CleanupId, room.ID, err)
		}
	}
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	audit := &models.CleanupAudit{
		CleanupId:          result.CleanupId,
		Trigger:            trigger,
		CleanedRooms:       result.CleanedRooms,
		CleanedSessions:    result.CleanedSessions,
		CleanedPlayers:     result.CleanedPlayers,
		CleanedVotes:       result.CleanedVotes,
		CleanedSubmissions: result.CleanedSubmissions,
		FailedRooms:        failed,
		ExecutionTimeMs:    result.ExecutionTimeMs,
	}
	if err := s.audits.InsertAudit(ctx, audit); err != nil {
		log.Errorf("cleanup %s: failed to write audit record: %v", result.CleanupId, err)
	}

	log.Infof("cleanup %s (%s): %d rooms, %d sessions, %d players, %d votes, %d submissions, %d failed in %dms",
		result.CleanupId, trigger, result.CleanedRooms, result.CleanedSessions,
		result.CleanedPlayers, result.CleanedVotes, result.CleanedSubmissions, failed,
		result.ExecutionTimeMs)
	return result, nil
}
