package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type ledgerFixture struct {
	ledger   *LedgerService
	sessions *SessionService
	rooms    *RoomService
	m        *memStore
	pub      *fakePublisher
	room     *models.Room
}

// newLedgerFixture seats the owner plus two players and starts the first
// playing phase.
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	m := newMemStore()
	m.seedTargets()
	pub := &fakePublisher{}
	rooms := NewRoomService(m, m, m, m, pub)
	sessions := NewSessionService(m, m, pub)
	ledger := NewLedgerService(m, m, m, m, m, pub)

	ctx := context.Background()
	room, _, err := rooms.CreateRoom(ctx, "room", models.GameModeTeam, models.DifficultyEasy, "owner", 4)
	require.NoError(t, err)
	_, _, err = rooms.JoinRoom(ctx, room.JoinCode, "user-2")
	require.NoError(t, err)
	_, _, err = rooms.JoinRoom(ctx, room.JoinCode, "user-3")
	require.NoError(t, err)

	_, err = sessions.RequestPhase(ctx, room.ID, "owner", models.PhasePlaying, 0)
	require.NoError(t, err)

	return &ledgerFixture{ledger: ledger, sessions: sessions, rooms: rooms, m: m, pub: pub, room: room}
}

func (f *ledgerFixture) startVoting(t *testing.T) {
	t.Helper()
	_, err := f.sessions.RequestPhase(context.Background(), f.room.ID, "owner", models.PhaseVoting, 0)
	require.NoError(t, err)
}

func (f *ledgerFixture) submitAll(t *testing.T) map[string]*models.Submission {
	t.Helper()
	out := map[string]*models.Submission{}
	for _, player := range []string{"owner", "user-2", "user-3"} {
		sub, err := f.ledger.Submit(context.Background(), f.room.ID, player, "prompt by "+player, "https://img.test/"+player+".png", 50)
		require.NoError(t, err)
		out[player] = sub
	}
	return out
}

func TestSubmitOnlyDuringPlaying(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Submit(ctx, f.room.ID, "user-2", "a red balloon", "", 10)
	require.NoError(t, err)

	f.startVoting(t)
	_, err = f.ledger.Submit(ctx, f.room.ID, "user-2", "too late", "", 10)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSubmitValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Submit(ctx, f.room.ID, "user-2", "", "", 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.ledger.Submit(ctx, f.room.ID, "user-2", "prompt", "", -1)
	assert.ErrorIs(t, err, ErrValidation)

	// non-members cannot submit
	_, err = f.ledger.Submit(ctx, f.room.ID, "stranger", "prompt", "", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitOverwritesWithinRound(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.ledger.Submit(ctx, f.room.ID, "user-2", "draft one", "", 10)
	require.NoError(t, err)

	second, err := f.ledger.Submit(ctx, f.room.ID, "user-2", "final version", "", 80)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final version", second.Prompt)

	subs, err := f.ledger.RoundSubmissions(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestCastVoteOnlyDuringVoting(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)

	_, err := f.ledger.CastVote(context.Background(), f.room.ID, "user-2", subs["owner"].ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestCastVoteRejectsSelfVote(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)

	_, err := f.ledger.CastVote(context.Background(), f.room.ID, "user-2", subs["user-2"].ID)
	assert.ErrorIs(t, err, ErrInvalidVote)
}

func TestCastVoteRejectsForeignSubmission(t *testing.T) {
	f := newLedgerFixture(t)
	f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	other := newLedgerFixture(t)
	otherSubs := other.submitAll(t)

	_, err := f.ledger.CastVote(ctx, f.room.ID, "user-2", otherSubs["owner"].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevoteMovesTheVote(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.room.ID, "user-2", subs["owner"].ID)
	require.NoError(t, err)
	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-2", subs["user-3"].ID)
	require.NoError(t, err)

	ownerSub, err := f.m.GetSubmissionByID(ctx, subs["owner"].ID)
	require.NoError(t, err)
	assert.Zero(t, ownerSub.VotesReceived)

	movedTo, err := f.m.GetSubmissionByID(ctx, subs["user-3"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, movedTo.VotesReceived)

	progress, err := f.ledger.VotingProgress(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, comm.VotingProgress{TotalPlayers: 3, VotedPlayers: 1}, progress)
}

func TestAllVotesInAdvancesToResults(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.room.ID, "owner", subs["user-2"].ID)
	require.NoError(t, err)
	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-2", subs["user-3"].ID)
	require.NoError(t, err)

	// two of three voted, still voting
	assert.Equal(t, models.PhaseVoting, f.m.sessions[f.room.ID].CurrentPhase)

	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-3", subs["owner"].ID)
	require.NoError(t, err)

	sess := f.m.sessions[f.room.ID]
	assert.Equal(t, models.PhaseResults, sess.CurrentPhase)
	assert.Equal(t, models.DefaultResultsDuration, sess.PhaseDuration)

	ev, ok := f.pub.lastOfClass(comm.EventPhaseChanged)
	require.True(t, ok)
	assert.Equal(t, comm.ReasonAllPlayersVoted, ev.Reason)
}

func TestDepartedVoterDoesNotWedgeCompletion(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.room.ID, "owner", subs["user-2"].ID)
	require.NoError(t, err)
	_, err = f.ledger.CastVote(ctx, f.room.ID, "user-3", subs["owner"].ID)
	require.NoError(t, err)

	// the remaining non-voter walks out; their vote is no longer required
	_, err = f.m.RemoveMember(ctx, f.room.ID, "user-2")
	require.NoError(t, err)

	// the next vote re-checks completion
	_, err = f.ledger.CastVote(ctx, f.room.ID, "owner", subs["user-3"].ID)
	require.NoError(t, err)

	assert.Equal(t, models.PhaseResults, f.m.sessions[f.room.ID].CurrentPhase)
}

func TestVotingProgressCountsDepartedVoters(t *testing.T) {
	f := newLedgerFixture(t)
	subs := f.submitAll(t)
	f.startVoting(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.room.ID, "user-2", subs["owner"].ID)
	require.NoError(t, err)
	_, err = f.m.RemoveMember(ctx, f.room.ID, "user-2")
	require.NoError(t, err)

	progress, err := f.ledger.VotingProgress(ctx, f.room.ID)
	require.NoError(t, err)
	// the departed voter's ballot still shows in the voted tally
	assert.Equal(t, comm.VotingProgress{TotalPlayers: 2, VotedPlayers: 1}, progress)
}

func TestRoundState(t *testing.T) {
	f := newLedgerFixture(t)
	f.submitAll(t)
	f.startVoting(t)

	state, err := f.ledger.RoundState(context.Background(), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, f.room.ID.String(), state.RoomId)
	assert.Equal(t, 1, state.Round)
	assert.Len(t, state.Submissions, 3)
	assert.Equal(t, 3, state.Progress.TotalPlayers)
}
