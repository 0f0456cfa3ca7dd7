package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Each vote received is worth two points; the external accuracy score
// (0-100) contributes a tenth of its value.
var (
	pointsPerVote  = decimal.NewFromInt(2)
	accuracyWeight = decimal.NewFromInt(10)
)

type PlayerResult struct {
	PlayerID      string  `json:"player_id"`
	Username      string  `json:"username"`
	Prompt        string  `json:"prompt"`
	ImageURL      string  `json:"image_url"`
	AccuracyScore float64 `json:"accuracy_score"`
	VotesReceived int     `json:"votes_received"`
	Score         string  `json:"score"`
}

type ScoreService struct {
	members     MemberStore
	sessions    SessionStore
	submissions SubmissionStore
}

func NewScoreService(members MemberStore, sessions SessionStore, submissions SubmissionStore) *ScoreService {
	return &ScoreService{members: members, sessions: sessions, submissions: submissions}
}

// RoundResults scores the current round's submissions, best first.
func (s *ScoreService) RoundResults(ctx context.Context, roomID uuid.UUID) ([]PlayerResult, error) {
	sess, err := s.sessions.GetSessionByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	subs, err := s.submissions.ListSubmissions(ctx, roomID, sess.Round)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	members, err := s.members.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		names[m.UserID] = m.Username
	}

	type scored struct {
		result PlayerResult
		score  decimal.Decimal
	}
	ranked := make([]scored, 0, len(subs))
	for _, sub := range subs {
		score := decimal.NewFromInt(int64(sub.VotesReceived)).Mul(pointsPerVote).
			Add(decimal.NewFromFloat(sub.AccuracyScore).Div(accuracyWeight))
		ranked = append(ranked, scored{
			result: PlayerResult{
				PlayerID:      sub.PlayerID,
				Username:      names[sub.PlayerID],
				Prompt:        sub.Prompt,
				ImageURL:      sub.ImageURL,
				AccuracyScore: sub.AccuracyScore,
				VotesReceived: sub.VotesReceived,
				Score:         score.StringFixed(1),
			},
			score: score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score.GreaterThan(ranked[j].score)
	})

	results := make([]PlayerResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, r.result)
	}
	return results, nil
}
