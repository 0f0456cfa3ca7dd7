package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

func TestRoundResultsScoringAndOrder(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	// two votes for user-2, one for user-3
	_, err := f.ledger.CastVote(ctx, f.room.ID, "owner", subs["user-2"].ID)
	require.NoError(t, err)
	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-3", subs["user-2"].ID)
	require.NoError(t, err)
	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-2", subs["user-3"].ID)
	require.NoError(t, err)

	svc := NewScoreService(f.m, f.m, f.m)
	results, err := svc.RoundResults(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// every submission carried accuracy 50, worth 5.0; votes are 2 apiece
	assert.Equal(t, "user-2", results[0].PlayerID)
	assert.Equal(t, "9.0", results[0].Score)
	assert.Equal(t, 2, results[0].VotesReceived)

	assert.Equal(t, "user-3", results[1].PlayerID)
	assert.Equal(t, "7.0", results[1].Score)

	assert.Equal(t, "owner", results[2].PlayerID)
	assert.Equal(t, "5.0", results[2].Score)
}

func TestRoundResultsUsesProfileNames(t *testing.T) {
	f := newLedgerFixture(t)
	f.submitAll(t)

	_, err := f.m.CreateProfile(context.Background(), models.Profile{UserID: "user-2", Username: "Dot"})
	require.NoError(t, err)

	svc := NewScoreService(f.m, f.m, f.m)
	results, err := svc.RoundResults(context.Background(), f.room.ID)
	require.NoError(t, err)

	byPlayer := map[string]string{}
	for _, r := range results {
		byPlayer[r.PlayerID] = r.Username
	}
	assert.Equal(t, "Dot", byPlayer["user-2"])
}

func TestRoundResultsNoSession(t *testing.T) {
	m := newMemStore()
	m.seedTargets()
	pub := &fakePublisher{}
	rooms := NewRoomService(m, m, m, m, pub)
	room, _, err := rooms.CreateRoom(context.Background(), "room", models.GameModeDuel, models.DifficultyEasy, "owner", 4)
	require.NoError(t, err)

	svc := NewScoreService(m, m, m)
	_, err = svc.RoundResults(context.Background(), room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
