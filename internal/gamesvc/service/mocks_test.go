package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
	"github.com/promptfighter/game-services/internal/gamesvc/store"
)

// memStore is an in-memory stand-in for the pgx stores, mirroring their
// row-level semantics closely enough for the service tests: capacity-guarded
// member inserts, conditional phase advances and upsert-with-recount votes.
type memStore struct {
	rooms       map[uuid.UUID]*models.Room
	members     map[uuid.UUID][]*models.RoomMember
	sessions    map[uuid.UUID]*models.Session
	submissions []*models.Submission
	votes       map[string]*models.Vote
	targets     []*models.TargetImage
	profiles    map[string]*models.Profile
	audits      []*models.CleanupAudit

	purgeErr map[uuid.UUID]error
	auditErr error
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    map[uuid.UUID]*models.Room{},
		members:  map[uuid.UUID][]*models.RoomMember{},
		sessions: map[uuid.UUID]*models.Session{},
		votes:    map[string]*models.Vote{},
		profiles: map[string]*models.Profile{},
		purgeErr: map[uuid.UUID]error{},
	}
}

func voteKey(roomID uuid.UUID, voterID string, round int) string {
	return fmt.Sprintf("%s|%s|%d", roomID, voterID, round)
}

// RoomStore

func (m *memStore) CreateRoom(_ context.Context, room *models.Room) (*models.Room, error) {
	r := *room
	r.ID = uuid.New()
	now := time.Now()
	r.LastActivity = now
	r.CreatedAt = now
	r.UpdatedAt = now
	m.rooms[r.ID] = &r
	return &r, nil
}

func (m *memStore) GetRoomByID(_ context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return room, nil
}

func (m *memStore) GetRoomByJoinCode(_ context.Context, joinCode string) (*models.Room, error) {
	for _, room := range m.rooms {
		if strings.EqualFold(room.JoinCode, joinCode) {
			return room, nil
		}
	}
	return nil, nil
}

func (m *memStore) JoinCodeExists(_ context.Context, joinCode string) (bool, error) {
	for _, room := range m.rooms {
		if strings.EqualFold(room.JoinCode, joinCode) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListRoomsByStatus(_ context.Context, status string) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range m.rooms {
		if room.Status == status {
			out = append(out, room)
		}
	}
	return out, nil
}

func (m *memStore) UpdateRoomOwner(_ context.Context, roomID uuid.UUID, ownerID string) error {
	if room, ok := m.rooms[roomID]; ok {
		room.OwnerID = ownerID
	}
	return nil
}

func (m *memStore) UpdateRoomStatus(_ context.Context, roomID uuid.UUID, status string) error {
	if room, ok := m.rooms[roomID]; ok {
		room.Status = status
		room.LastActivity = time.Now()
	}
	return nil
}

func (m *memStore) TouchActivity(_ context.Context, roomID uuid.UUID) error {
	if room, ok := m.rooms[roomID]; ok {
		room.LastActivity = time.Now()
	}
	return nil
}

func (m *memStore) ListIdleRooms(_ context.Context, cutoff time.Time) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range m.rooms {
		if room.LastActivity.Before(cutoff) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (m *memStore) PurgeRoom(_ context.Context, roomID uuid.UUID) (store.PurgeCounts, error) {
	var counts store.PurgeCounts
	if err, ok := m.purgeErr[roomID]; ok {
		return counts, err
	}
	for key, v := range m.votes {
		if v.RoomID == roomID {
			delete(m.votes, key)
			counts.Votes++
		}
	}
	var kept []*models.Submission
	for _, sub := range m.submissions {
		if sub.RoomID == roomID {
			counts.Submissions++
			continue
		}
		kept = append(kept, sub)
	}
	m.submissions = kept
	counts.Members = len(m.members[roomID])
	delete(m.members, roomID)
	if _, ok := m.sessions[roomID]; ok {
		delete(m.sessions, roomID)
		counts.Sessions++
	}
	if _, ok := m.rooms[roomID]; ok {
		delete(m.rooms, roomID)
		counts.Rooms++
	}
	return counts, nil
}

// MemberStore

func (m *memStore) AddMember(_ context.Context, roomID uuid.UUID, userID string) (*models.RoomMember, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, store.ErrRoomAtCapacity
	}
	for _, member := range m.members[roomID] {
		if member.UserID == userID {
			return nil, store.ErrAlreadyMember
		}
	}
	if len(m.members[roomID]) >= room.MaxPlayers {
		return nil, store.ErrRoomAtCapacity
	}
	member := &models.RoomMember{
		ID:       uuid.New(),
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	m.members[roomID] = append(m.members[roomID], member)
	return member, nil
}

func (m *memStore) RemoveMember(_ context.Context, roomID uuid.UUID, userID string) (bool, error) {
	members := m.members[roomID]
	for i, member := range members {
		if member.UserID == userID {
			m.members[roomID] = append(members[:i:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListMembers(_ context.Context, roomID uuid.UUID) ([]*models.RoomMember, error) {
	out := make([]*models.RoomMember, 0, len(m.members[roomID]))
	for _, member := range m.members[roomID] {
		c := *member
		if p, ok := m.profiles[member.UserID]; ok {
			c.Username = p.Username
		}
		out = append(out, &c)
	}
	return out, nil
}

func (m *memStore) CountMembers(_ context.Context, roomID uuid.UUID) (int, error) {
	return len(m.members[roomID]), nil
}

func (m *memStore) IsMember(_ context.Context, roomID uuid.UUID, userID string) (bool, error) {
	for _, member := range m.members[roomID] {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ActiveRoomForUser(_ context.Context, userID string) (uuid.UUID, bool, error) {
	for roomID, members := range m.members {
		for _, member := range members {
			if member.UserID == userID {
				return roomID, true, nil
			}
		}
	}
	return uuid.Nil, false, nil
}

func (m *memStore) EarliestMember(_ context.Context, roomID uuid.UUID) (*models.RoomMember, error) {
	members := m.members[roomID]
	if len(members) == 0 {
		return nil, nil
	}
	return members[0], nil
}

// SessionStore

func (m *memStore) CreateSession(_ context.Context, roomID uuid.UUID, phase string, duration int) (*models.Session, error) {
	if _, ok := m.sessions[roomID]; ok {
		return nil, nil
	}
	sess := &models.Session{
		ID:             uuid.New(),
		RoomID:         roomID,
		CurrentPhase:   phase,
		PhaseStartTime: time.Now(),
		PhaseDuration:  duration,
		Round:          1,
		LastActivity:   time.Now(),
	}
	m.sessions[roomID] = sess
	return sess, nil
}

func (m *memStore) GetSessionByRoomID(_ context.Context, roomID uuid.UUID) (*models.Session, error) {
	sess, ok := m.sessions[roomID]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

func (m *memStore) AdvancePhase(_ context.Context, roomID uuid.UUID, fromPhase, toPhase string, duration int, bumpRound bool) (*models.Session, error) {
	sess, ok := m.sessions[roomID]
	if !ok || sess.CurrentPhase != fromPhase {
		return nil, nil
	}
	sess.CurrentPhase = toPhase
	sess.PhaseStartTime = time.Now()
	sess.PhaseDuration = duration
	if bumpRound {
		sess.Round++
	}
	sess.LastActivity = time.Now()
	if room, ok := m.rooms[roomID]; ok {
		room.Status = toPhase
	}
	return sess, nil
}

func (m *memStore) ListExpiredSessions(_ context.Context) ([]*models.Session, error) {
	var out []*models.Session
	for _, sess := range m.sessions {
		if sess.CurrentPhase != models.PhasePlaying && sess.CurrentPhase != models.PhaseResults {
			continue
		}
		if sess.PhaseDuration <= 0 {
			continue
		}
		if !sess.Deadline().After(time.Now()) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// SubmissionStore

func (m *memStore) UpsertSubmission(_ context.Context, sub *models.Submission) (*models.Submission, error) {
	for _, existing := range m.submissions {
		if existing.RoomID == sub.RoomID && existing.PlayerID == sub.PlayerID && existing.Round == sub.Round {
			existing.Prompt = sub.Prompt
			existing.ImageURL = sub.ImageURL
			existing.AccuracyScore = sub.AccuracyScore
			return existing, nil
		}
	}
	saved := *sub
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now()
	m.submissions = append(m.submissions, &saved)
	return &saved, nil
}

func (m *memStore) GetSubmissionByID(_ context.Context, submissionID uuid.UUID) (*models.Submission, error) {
	for _, sub := range m.submissions {
		if sub.ID == submissionID {
			return sub, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListSubmissions(_ context.Context, roomID uuid.UUID, round int) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range m.submissions {
		if sub.RoomID == roomID && sub.Round == round {
			out = append(out, sub)
		}
	}
	return out, nil
}

// VoteStore

func (m *memStore) CastVote(_ context.Context, vote *models.Vote) (*models.Vote, error) {
	key := voteKey(vote.RoomID, vote.VoterID, vote.Round)
	saved, ok := m.votes[key]
	if ok {
		saved.SubmissionID = vote.SubmissionID
	} else {
		v := *vote
		v.ID = uuid.New()
		m.votes[key] = &v
		saved = &v
	}
	m.recountVotes(vote.RoomID, vote.Round)
	return saved, nil
}

func (m *memStore) recountVotes(roomID uuid.UUID, round int) {
	counts := map[uuid.UUID]int{}
	for _, v := range m.votes {
		if v.RoomID == roomID && v.Round == round {
			counts[v.SubmissionID]++
		}
	}
	for _, sub := range m.submissions {
		if sub.RoomID == roomID && sub.Round == round {
			sub.VotesReceived = counts[sub.ID]
		}
	}
}

func (m *memStore) VotingProgress(_ context.Context, roomID uuid.UUID, round int) (int, int, error) {
	voted := 0
	for _, v := range m.votes {
		if v.RoomID == roomID && v.Round == round {
			voted++
		}
	}
	return len(m.members[roomID]), voted, nil
}

func (m *memStore) CountMembersVoted(_ context.Context, roomID uuid.UUID, round int) (int, error) {
	n := 0
	for _, v := range m.votes {
		if v.RoomID != roomID || v.Round != round {
			continue
		}
		for _, member := range m.members[roomID] {
			if member.UserID == v.VoterID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *memStore) ListVotes(_ context.Context, roomID uuid.UUID, round int) ([]*models.Vote, error) {
	var out []*models.Vote
	for _, v := range m.votes {
		if v.RoomID == roomID && v.Round == round {
			out = append(out, v)
		}
	}
	return out, nil
}

// TargetImageStore

func (m *memStore) GetRandomByDifficulty(_ context.Context, difficulty string) (*models.TargetImage, error) {
	for _, img := range m.targets {
		if img.Difficulty == difficulty {
			return img, nil
		}
	}
	return nil, nil
}

// ProfileStore

func (m *memStore) GetByID(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *memStore) CreateProfile(_ context.Context, profile models.Profile) (*models.Profile, error) {
	p := profile
	m.profiles[p.UserID] = &p
	return &p, nil
}

// AuditStore

func (m *memStore) InsertAudit(_ context.Context, audit *models.CleanupAudit) error {
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, audit)
	return nil
}

// fakePublisher records every event for assertions.
type fakePublisher struct {
	events []comm.RoomEvent
}

func (p *fakePublisher) PublishRoomEvent(ev comm.RoomEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) lastOfClass(class string) (comm.RoomEvent, bool) {
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Class == class {
			return p.events[i], true
		}
	}
	return comm.RoomEvent{}, false
}

// seedTargets gives every difficulty one image so CreateRoom never misses.
func (m *memStore) seedTargets() {
	for _, d := range []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		m.targets = append(m.targets, &models.TargetImage{
			ID:         uuid.New(),
			URL:        "https://img.test/" + d + ".png",
			Difficulty: d,
		})
	}
}
