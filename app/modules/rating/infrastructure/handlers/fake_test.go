package ratinghandlers

import (
	"context"

	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Rating Service
// ------------------------

type FakeRatingService struct {
	trace []string

	ProjectRatingFunc  func(ctx context.Context, req ratingservice.ProjectionRequest) (ratingdomain.Projection, error)
	SubmitMatchFunc    func(ctx context.Context, req ratingservice.SubmitMatchRequest) (*ratingservice.SubmitResult, error)
	ConfirmFunc        func(ctx context.Context, matchID, userID uuid.UUID) (*ratingservice.Readiness, error)
	RejectFunc         func(ctx context.Context, matchID, userID uuid.UUID) (*ratingservice.Readiness, error)
	FinalizeFunc       func(ctx context.Context, matchID uuid.UUID) (*ratingservice.FinalizeResult, error)
	GetMatchFunc       func(ctx context.Context, matchID uuid.UUID) (*ratingservice.MatchView, error)
	PlayerMomentumFunc func(ctx context.Context, playerID uuid.UUID, since string) (*ratingservice.Momentum, error)
	MomentumChartFunc  func(ctx context.Context, playerID uuid.UUID, since string) ([]byte, error)
	ImportMatchesFunc  func(ctx context.Context, filename string, data []byte, importerID uuid.UUID) (*ratingservice.ImportReport, error)
}

func NewFakeRatingService() *FakeRatingService {
	return &FakeRatingService{
		trace: []string{},
	}
}

func (f *FakeRatingService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeRatingService) KFactorTable() []ratingdomain.KFactorEntry {
	f.record("KFactorTable")
	return ratingdomain.KFactorTable()
}

func (f *FakeRatingService) ProjectRating(ctx context.Context, req ratingservice.ProjectionRequest) (ratingdomain.Projection, error) {
	f.record("ProjectRating")
	if f.ProjectRatingFunc != nil {
		return f.ProjectRatingFunc(ctx, req)
	}
	return ratingdomain.Projection{}, nil
}

func (f *FakeRatingService) SubmitMatch(ctx context.Context, req ratingservice.SubmitMatchRequest) (*ratingservice.SubmitResult, error) {
	f.record("SubmitMatch")
	if f.SubmitMatchFunc != nil {
		return f.SubmitMatchFunc(ctx, req)
	}
	return &ratingservice.SubmitResult{}, nil
}

func (f *FakeRatingService) Confirm(ctx context.Context, matchID, userID uuid.UUID) (*ratingservice.Readiness, error) {
	f.record("Confirm")
	if f.ConfirmFunc != nil {
		return f.ConfirmFunc(ctx, matchID, userID)
	}
	return &ratingservice.Readiness{MatchID: matchID}, nil
}

func (f *FakeRatingService) Reject(ctx context.Context, matchID, userID uuid.UUID) (*ratingservice.Readiness, error) {
	f.record("Reject")
	if f.RejectFunc != nil {
		return f.RejectFunc(ctx, matchID, userID)
	}
	return &ratingservice.Readiness{MatchID: matchID}, nil
}

func (f *FakeRatingService) Finalize(ctx context.Context, matchID uuid.UUID) (*ratingservice.FinalizeResult, error) {
	f.record("Finalize")
	if f.FinalizeFunc != nil {
		return f.FinalizeFunc(ctx, matchID)
	}
	return &ratingservice.FinalizeResult{MatchID: matchID}, nil
}

func (f *FakeRatingService) GetMatch(ctx context.Context, matchID uuid.UUID) (*ratingservice.MatchView, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, matchID)
	}
	return &ratingservice.MatchView{ID: matchID}, nil
}

func (f *FakeRatingService) PlayerMomentum(ctx context.Context, playerID uuid.UUID, since string) (*ratingservice.Momentum, error) {
	f.record("PlayerMomentum")
	if f.PlayerMomentumFunc != nil {
		return f.PlayerMomentumFunc(ctx, playerID, since)
	}
	return &ratingservice.Momentum{PlayerID: playerID}, nil
}

func (f *FakeRatingService) MomentumChart(ctx context.Context, playerID uuid.UUID, since string) ([]byte, error) {
	f.record("MomentumChart")
	if f.MomentumChartFunc != nil {
		return f.MomentumChartFunc(ctx, playerID, since)
	}
	return nil, nil
}

func (f *FakeRatingService) ImportMatches(ctx context.Context, filename string, data []byte, importerID uuid.UUID) (*ratingservice.ImportReport, error) {
	f.record("ImportMatches")
	if f.ImportMatchesFunc != nil {
		return f.ImportMatchesFunc(ctx, filename, data, importerID)
	}
	return &ratingservice.ImportReport{}, nil
}

// --- Accessors for assertions ---

func (f *FakeRatingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ ratingservice.Service = (*FakeRatingService)(nil)
