package ratingintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratingqueue "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/queue"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/integration_tests/testutils"
	ratingmetrics "github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/metrics/rating"
)

type TestDeps struct {
	Ctx     context.Context
	Env     *testutils.TestEnvironment
	Repo    ratingdb.Repository
	BunDB   *bun.DB
	Service *ratingservice.RatingService
	Queue   *ratingqueue.Service
}

// SetupTestRatingService wires the service to real Postgres, NATS and a River
// client. The queue is not started, so jobs are only recorded.
func SetupTestRatingService(t *testing.T) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	repo := ratingdb.NewRepository(env.DB)
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := ratingmetrics.NewNoop()
	tracer := noop.NewTracerProvider().Tracer("test_rating_service")

	service := ratingservice.NewRatingService(
		repo,
		testLogger,
		metrics,
		tracer,
		env.DB,
		ratingevents.NewPublisher(env.EventBus),
		nil,
	)

	queue, err := ratingqueue.NewService(env.Ctx, env.DB, testLogger, env.PgConnStr, metrics, service)
	if err != nil {
		t.Fatalf("Failed to create rating queue: %v", err)
	}
	service.SetFinalizeDispatcher(queue)
	t.Cleanup(func() {
		if err := queue.Stop(context.Background()); err != nil {
			t.Logf("Failed to stop rating queue: %v", err)
		}
	})

	return TestDeps{
		Ctx:     env.Ctx,
		Env:     env,
		Repo:    repo,
		BunDB:   env.DB,
		Service: service,
		Queue:   queue,
	}
}

// seedRatings stores ratings for players before a match is submitted.
func seedRatings(t *testing.T, deps TestDeps, ratings map[uuid.UUID]float64) {
	t.Helper()
	for id, r := range ratings {
		row := &ratingdb.PlayerRating{PlayerID: id, Rating: r}
		if _, err := deps.BunDB.NewInsert().Model(row).Exec(deps.Ctx); err != nil {
			t.Fatalf("Failed to seed rating for %s: %v", id, err)
		}
	}
}

// submitAndConfirm records a doubles match by team1[0] and has every other
// participant confirm it.
func submitAndConfirm(t *testing.T, deps TestDeps, category ratingdomain.Category, sets []ratingdomain.SetScore, team1, team2 []uuid.UUID) uuid.UUID {
	t.Helper()

	submitted, err := deps.Service.SubmitMatch(deps.Ctx, ratingservice.SubmitMatchRequest{
		MatchType:   string(ratingdomain.MatchTypeDoubles),
		Category:    string(category),
		Sets:        sets,
		Team1:       team1,
		Team2:       team2,
		SubmitterID: team1[0],
	})
	if err != nil {
		t.Fatalf("SubmitMatch returned unexpected error: %v", err)
	}

	for _, id := range submitted.AwaitingIDs {
		if _, err := deps.Service.Confirm(deps.Ctx, submitted.MatchID, id); err != nil {
			t.Fatalf("Confirm by %s returned unexpected error: %v", id, err)
		}
	}
	return submitted.MatchID
}
