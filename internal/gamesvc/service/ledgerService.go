package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

// LedgerService records submissions and votes for the current round and
// fires the completion trigger that moves voting to results once every
// current member has voted.
type LedgerService struct {
	rooms       RoomStore
	members     MemberStore
	sessions    SessionStore
	submissions SubmissionStore
	votes       VoteStore
	publisher   Publisher
}

func NewLedgerService(rooms RoomStore, members MemberStore, sessions SessionStore,
	submissions SubmissionStore, votes VoteStore, publisher Publisher) *LedgerService {
	return &LedgerService{
		rooms:       rooms,
		members:     members,
		sessions:    sessions,
		submissions: submissions,
		votes:       votes,
		publisher:   publisher,
	}
}

// Submit upserts the player's entry for the current round. Re-submitting
// before time runs out overwrites; only the last entry persists for voting.
// Allowed during the playing phase only.
func (s *LedgerService) Submit(ctx context.Context, roomID uuid.UUID, playerID, prompt, imageURL string, accuracyScore float64) (*models.Submission, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if accuracyScore < 0 {
		return nil, fmt.Errorf("%w: accuracy score must be non-negative", ErrValidation)
	}

	sess, err := s.roundContext(ctx, roomID, playerID)
	if err != nil {
		return nil, err
	}
	if sess.CurrentPhase != models.PhasePlaying {
		return nil, fmt.Errorf("%w: submissions are accepted during playing, not %s", ErrWrongPhase, sess.CurrentPhase)
	}

	saved, err := s.submissions.UpsertSubmission(ctx, &models.Submission{
		RoomID:        roomID,
		PlayerID:      playerID,
		Round:         sess.Round,
		Prompt:        prompt,
		ImageURL:      imageURL,
		AccuracyScore: accuracyScore,
	})
	if err != nil {
		return nil, err
	}

	s.touch(ctx, roomID)
	ev := comm.NewRoomEvent(comm.EventSubmissionReceived, roomID.String())
	ev.Round = sess.Round
	s.publish(ev)
	return saved, nil
}

// CastVote records the voter's single vote for this round. Re-voting
// overwrites the same slot; self-votes are rejected. When the vote
// completes the round, the session advances to results immediately - the
// conditional phase update guarantees two racing last votes produce exactly
// one advance.
func (s *LedgerService) CastVote(ctx context.Context, roomID uuid.UUID, voterID string, submissionID uuid.UUID) (*models.Vote, error) {
	sess, err := s.roundContext(ctx, roomID, voterID)
	if err != nil {
		return nil, err
	}
	if sess.CurrentPhase != models.PhaseVoting {
		return nil, fmt.Errorf("%w: votes are accepted during voting, not %s", ErrWrongPhase, sess.CurrentPhase)
	}

	sub, err := s.submissions.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.RoomID != roomID || sub.Round != sess.Round {
		return nil, fmt.Errorf("%w: submission %s is not part of this round", ErrNotFound, submissionID)
	}
	if sub.PlayerID == voterID {
		return nil, fmt.Errorf("%w: voting for your own submission is not allowed", ErrInvalidVote)
	}

	vote, err := s.votes.CastVote(ctx, &models.Vote{
		RoomID:       roomID,
		VoterID:      voterID,
		Round:        sess.Round,
		SubmissionID: submissionID,
	})
	if err != nil {
		return nil, err
	}

	s.touch(ctx, roomID)
	ev := comm.NewRoomEvent(comm.EventVoteCast, roomID.String())
	ev.Round = sess.Round
	s.publish(ev)

	s.checkCompletion(ctx, roomID, sess.Round)
	return vote, nil
}

// VotingProgress reports current members against distinct voters this
// round, for the UI and for clients polling toward completion.
func (s *LedgerService) VotingProgress(ctx context.Context, roomID uuid.UUID) (comm.VotingProgress, error) {
	sess, err := s.liveSession(ctx, roomID)
	if err != nil {
		return comm.VotingProgress{}, err
	}

	total, voted, err := s.votes.VotingProgress(ctx, roomID, sess.Round)
	if err != nil {
		return comm.VotingProgress{}, err
	}
	return comm.VotingProgress{TotalPlayers: total, VotedPlayers: voted}, nil
}

// RoundSubmissions lists this round's submissions.
func (s *LedgerService) RoundSubmissions(ctx context.Context, roomID uuid.UUID) ([]*models.Submission, error) {
	sess, err := s.liveSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.submissions.ListSubmissions(ctx, roomID, sess.Round)
}

// RoundState bundles submissions and voting progress for socket clients
// re-fetching after an event.
func (s *LedgerService) RoundState(ctx context.Context, roomID uuid.UUID) (*comm.RoundState, error) {
	sess, err := s.liveSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, roomID, sess.Round)
	if err != nil {
		return nil, err
	}
	total, voted, err := s.votes.VotingProgress(ctx, roomID, sess.Round)
	if err != nil {
		return nil, err
	}
	return &comm.RoundState{
		RoomId:      roomID.String(),
		Round:       sess.Round,
		Submissions: subs,
		Progress:    comm.VotingProgress{TotalPlayers: total, VotedPlayers: voted},
	}, nil
}

// checkCompletion advances voting to results once every current member has
// voted. Departed voters are not required: completion compares members who
// voted against the member total, so a departure never wedges the round.
func (s *LedgerService) checkCompletion(ctx context.Context, roomID uuid.UUID, round int) {
	total, err := s.members.CountMembers(ctx, roomID)
	if err != nil {
		log.Errorf("completion check for room %s: %v", roomID, err)
		return
	}
	if total == 0 {
		return
	}
	voted, err := s.votes.CountMembersVoted(ctx, roomID, round)
	if err != nil {
		log.Errorf("completion check for room %s: %v", roomID, err)
		return
	}
	if voted < total {
		return
	}

	advanced, err := s.sessions.AdvancePhase(ctx, roomID, models.PhaseVoting, models.PhaseResults,
		models.DefaultResultsDuration, false)
	if err != nil {
		log.Errorf("completion advance for room %s: %v", roomID, err)
		return
	}
	if advanced == nil {
		// already advanced by a racing vote or the owner
		return
	}

	ev := comm.NewRoomEvent(comm.EventPhaseChanged, roomID.String())
	ev.Phase = advanced.CurrentPhase
	ev.Round = advanced.Round
	ev.Reason = comm.ReasonAllPlayersVoted
	s.publish(ev)
}

// roundContext validates room existence and membership, returning the live
// session.
func (s *LedgerService) roundContext(ctx context.Context, roomID uuid.UUID, userID string) (*models.Session, error) {
	room, err := s.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	member, err := s.members.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: user is not a member of this room", ErrValidation)
	}
	return s.liveSession(ctx, roomID)
}

func (s *LedgerService) liveSession(ctx context.Context, roomID uuid.UUID) (*models.Session, error) {
	sess, err := s.sessions.GetSessionByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: no session for room %s", ErrNotFound, roomID)
	}
	return sess, nil
}

func (s *LedgerService) touch(ctx context.Context, roomID uuid.UUID) {
	if err := s.rooms.TouchActivity(ctx, roomID); err != nil {
		log.Errorf("failed to touch room %s: %v", roomID, err)
	}
	if err := s.sessions.TouchActivity(ctx, roomID); err != nil {
		log.Errorf("failed to touch session for room %s: %v", roomID, err)
	}
}

func (s *LedgerService) publish(ev comm.RoomEvent) {
	if err := s.publisher.PublishRoomEvent(ev); err != nil {
		log.Errorf("failed to publish %s event for room %s: %v", ev.Class, ev.RoomId, err)
	}
}
