package ratingrepositorytests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/integration_tests/testutils"
)

func setup(t *testing.T) (*testutils.TestEnvironment, ratingdb.Repository) {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)
	return env, ratingdb.NewRepository(env.DB)
}

func createMatch(t *testing.T, ctx context.Context, repo ratingdb.Repository, team1, team2 []uuid.UUID) *ratingdb.Match {
	t.Helper()
	winner := ratingdomain.Team1
	match := &ratingdb.Match{
		ID:          uuid.New(),
		MatchType:   ratingdomain.MatchTypeDoubles,
		Category:    ratingdomain.CategoryClubLeague,
		Sets:        []ratingdomain.SetScore{{Team1: 6, Team2: 3}, {Team1: 7, Team2: 5}},
		Score:       "6-3, 7-5",
		Status:      ratingdomain.StatusPending,
		WinningTeam: &winner,
		SubmittedBy: team1[0],
	}
	var participants []*ratingdb.Participant
	for _, id := range team1 {
		participants = append(participants, &ratingdb.Participant{MatchID: match.ID, PlayerID: id, TeamNumber: ratingdomain.Team1})
	}
	for _, id := range team2 {
		participants = append(participants, &ratingdb.Participant{MatchID: match.ID, PlayerID: id, TeamNumber: ratingdomain.Team2})
	}
	require.NoError(t, repo.CreateMatch(ctx, nil, match, participants))
	return match
}

func TestEnsurePlayersKeepsExistingRatings(t *testing.T) {
	env, repo := setup(t)
	ctx := env.Ctx
	players := testutils.NewTestDataGenerator(1).GeneratePlayers(3)

	require.NoError(t, repo.EnsurePlayers(ctx, nil, players[:1]))
	require.NoError(t, repo.UpdateRatings(ctx, nil, []ratingdb.RatingUpdate{{PlayerID: players[0], Rating: 1100}}))
	require.NoError(t, repo.EnsurePlayers(ctx, nil, players))

	ratings, err := repo.GetRatings(ctx, nil, players)
	require.NoError(t, err)
	require.Len(t, ratings, 3)
	assert.Equal(t, 1100.0, ratings[players[0]].Rating)
	assert.Equal(t, 1, ratings[players[0]].MatchesPlayed)
	assert.Equal(t, ratingdomain.DefaultRating, ratings[players[1]].Rating)
	assert.Equal(t, 0, ratings[players[2]].MatchesPlayed)
}

func TestUpdateRatingsUnknownPlayer(t *testing.T) {
	env, repo := setup(t)

	err := repo.UpdateRatings(env.Ctx, nil, []ratingdb.RatingUpdate{{PlayerID: uuid.New(), Rating: 1010}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ratingdb.ErrNoRowsAffected))
}

func TestGetRatingsForUpdateInTransaction(t *testing.T) {
	env, repo := setup(t)
	players := testutils.NewTestDataGenerator(2).GeneratePlayers(4)
	require.NoError(t, repo.EnsurePlayers(env.Ctx, nil, players))

	err := env.DB.RunInTx(env.Ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ratings, err := repo.GetRatingsForUpdate(ctx, tx, players)
		if err != nil {
			return err
		}
		assert.Len(t, ratings, 4)
		return nil
	})
	require.NoError(t, err)
}

func TestMatchLifecycle(t *testing.T) {
	env, repo := setup(t)
	ctx := env.Ctx
	players := testutils.NewTestDataGenerator(3).GeneratePlayers(4)
	match := createMatch(t, ctx, repo, players[:2], players[2:])

	got, err := repo.GetMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.StatusPending, got.Status)
	assert.Equal(t, match.Sets, got.Sets)
	require.NotNil(t, got.WinningTeam)
	assert.Equal(t, ratingdomain.Team1, *got.WinningTeam)

	parts, err := repo.GetParticipants(ctx, nil, match.ID)
	require.NoError(t, err)
	require.Len(t, parts, 4)
	assert.Equal(t, ratingdomain.Team1, parts[0].TeamNumber)
	assert.Equal(t, ratingdomain.Team2, parts[3].TeamNumber)

	require.NoError(t, repo.UpdateMatchStatus(ctx, nil, match.ID, ratingdomain.StatusConfirmed))

	finalizedAt := time.Now().UTC().Truncate(time.Microsecond)
	rec := ratingdb.FinalizeRecord{
		MatchID:     match.ID,
		KFactor:     32,
		Margin:      1.1,
		FinalizedAt: finalizedAt,
	}
	for i, id := range players {
		won := i < 2
		delta := 14
		if !won {
			delta = -14
		}
		rec.Participants = append(rec.Participants, ratingdb.ParticipantResult{
			PlayerID: id, IsWinner: won, RatingBefore: 1000, RatingDelta: delta,
		})
	}
	require.NoError(t, repo.FinalizeMatch(ctx, nil, rec))

	got, err = repo.GetMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.StatusCompleted, got.Status)
	require.NotNil(t, got.KFactor)
	assert.Equal(t, 32, *got.KFactor)
	require.NotNil(t, got.FinalizedAt)
	assert.True(t, finalizedAt.Equal(*got.FinalizedAt))

	err = repo.FinalizeMatch(ctx, nil, rec)
	assert.True(t, errors.Is(err, ratingdb.ErrNoRowsAffected), "a completed match is not finalized twice")

	err = repo.UpdateMatchStatus(ctx, nil, match.ID, ratingdomain.StatusDisputed)
	assert.True(t, errors.Is(err, ratingdb.ErrNoRowsAffected), "a completed match keeps its status")

	history, err := repo.GetRatingHistory(ctx, nil, players[0], finalizedAt.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, match.ID, history[0].MatchID)
	assert.Equal(t, 14, history[0].RatingDelta)
	assert.True(t, history[0].IsWinner)

	history, err = repo.GetRatingHistory(ctx, nil, players[0], finalizedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetMatchNotFound(t *testing.T) {
	env, repo := setup(t)

	_, err := repo.GetMatch(env.Ctx, nil, uuid.New())
	assert.True(t, errors.Is(err, ratingdb.ErrNotFound))
}

func TestUpsertConfirmationLastWriteWins(t *testing.T) {
	env, repo := setup(t)
	ctx := env.Ctx
	players := testutils.NewTestDataGenerator(4).GeneratePlayers(4)
	match := createMatch(t, ctx, repo, players[:2], players[2:])

	var rows []*ratingdb.Confirmation
	for _, id := range players[1:] {
		rows = append(rows, &ratingdb.Confirmation{MatchID: match.ID, UserID: id})
	}
	require.NoError(t, repo.CreateConfirmations(ctx, nil, rows))

	now := time.Now().UTC()
	require.NoError(t, repo.UpsertConfirmation(ctx, nil, &ratingdb.Confirmation{
		MatchID: match.ID, UserID: players[2], Rejected: true, RespondedAt: &now,
	}))
	require.NoError(t, repo.UpsertConfirmation(ctx, nil, &ratingdb.Confirmation{
		MatchID: match.ID, UserID: players[2], Confirmed: true, RespondedAt: &now,
	}))

	got, err := repo.GetConfirmations(ctx, nil, match.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	states := make([]ratingdomain.ConfirmationState, len(got))
	for i, row := range got {
		states[i] = row.State()
		if row.UserID == players[2] {
			assert.True(t, row.Confirmed)
			assert.False(t, row.Rejected)
			assert.NotNil(t, row.RespondedAt)
		}
	}
	tally := ratingdomain.Tally(states)
	assert.Equal(t, 1, tally.Confirmed)
	assert.Equal(t, 2, tally.Pending)
}
