package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/google/uuid"
)

// GetMatch returns a match with its participants, confirmations and readiness.
func (s *RatingService) GetMatch(ctx context.Context, matchID uuid.UUID) (*MatchView, error) {
	return unwrap[*MatchView](withTelemetry(s, ctx, "GetMatch", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchView, error], error) {
		match, err := s.repo.GetMatch(ctx, nil, matchID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return results.FailureResult[*MatchView, error](fmt.Errorf("match %s: %w", matchID, ratingdb.ErrNotFound)), nil
			}
			return results.OperationResult[*MatchView, error]{}, err
		}
		participants, err := s.repo.GetParticipants(ctx, nil, matchID)
		if err != nil {
			return results.OperationResult[*MatchView, error]{}, err
		}
		rows, err := s.repo.GetConfirmations(ctx, nil, matchID)
		if err != nil {
			return results.OperationResult[*MatchView, error]{}, err
		}
		return results.SuccessResult[*MatchView, error](buildMatchView(match, participants, rows)), nil
	}))
}

func buildMatchView(match *ratingdb.Match, participants []*ratingdb.Participant, rows []*ratingdb.Confirmation) *MatchView {
	view := &MatchView{
		ID:            match.ID,
		MatchType:     match.MatchType,
		Category:      match.Category,
		Sets:          match.Sets,
		Score:         match.Score,
		Status:        match.Status,
		WinningTeam:   match.WinningTeam,
		SubmittedBy:   match.SubmittedBy,
		PlayedAt:      match.PlayedAt,
		KFactor:       match.KFactor,
		Margin:        match.Margin,
		FinalizedAt:   match.FinalizedAt,
		Participants:  make([]ParticipantView, 0, len(participants)),
		Confirmations: make([]ConfirmationView, 0, len(rows)),
	}
	for _, p := range participants {
		view.Participants = append(view.Participants, ParticipantView{
			PlayerID:     p.PlayerID,
			Team:         p.TeamNumber,
			IsWinner:     p.IsWinner,
			RatingBefore: p.RatingBefore,
			RatingDelta:  p.RatingDelta,
		})
	}

	states := make([]ratingdomain.ConfirmationState, 0, len(rows))
	for _, c := range rows {
		view.Confirmations = append(view.Confirmations, ConfirmationView{
			UserID:      c.UserID,
			Confirmed:   c.Confirmed,
			Rejected:    c.Rejected,
			RespondedAt: c.RespondedAt,
		})
		states = append(states, c.State())
	}

	tally := ratingdomain.Tally(states)
	view.Readiness = Readiness{
		MatchID:         match.ID,
		Status:          match.Status,
		Confirmed:       tally.Confirmed,
		Rejected:        tally.Rejected,
		Pending:         tally.Pending,
		ReadyToFinalize: !match.Status.IsTerminal() && tally.Ready(),
	}
	return view
}

// PlayerMomentum lists a player's rating movement since the given time.
// since accepts the same forms as a match's played_at; empty means the last 90 days.
func (s *RatingService) PlayerMomentum(ctx context.Context, playerID uuid.UUID, since string) (*Momentum, error) {
	return unwrap[*Momentum](withTelemetry(s, ctx, "PlayerMomentum", playerID.String(), func(ctx context.Context) (results.OperationResult[*Momentum, error], error) {
		from, err := s.momentumStart(since)
		if err != nil {
			return results.FailureResult[*Momentum, error](err), nil
		}

		history, err := s.repo.GetRatingHistory(ctx, nil, playerID, from)
		if err != nil {
			return results.OperationResult[*Momentum, error]{}, err
		}
		return results.SuccessResult[*Momentum, error](buildMomentum(playerID, from, history)), nil
	}))
}

func (s *RatingService) momentumStart(since string) (time.Time, error) {
	now := s.now()
	if strings.TrimSpace(since) == "" {
		return now.Add(-defaultMomentumWindow), nil
	}
	t, err := parseHumanTime(since, now)
	if err != nil {
		return time.Time{}, ratingdomain.NewValidationError("since: %v", err)
	}
	return t, nil
}

func buildMomentum(playerID uuid.UUID, since time.Time, history []ratingdb.HistoryEntry) *Momentum {
	m := &Momentum{
		PlayerID: playerID,
		Since:    since,
		Points:   make([]MomentumPoint, 0, len(history)),
	}
	for _, h := range history {
		m.Points = append(m.Points, MomentumPoint{
			MatchID:     h.MatchID,
			Category:    h.Category,
			FinalizedAt: h.FinalizedAt,
			Delta:       h.RatingDelta,
			RatingAfter: h.RatingBefore + float64(h.RatingDelta),
		})
		m.Total += h.RatingDelta
		// A heavy favourite can win for a delta of 0, so the flag decides.
		if h.IsWinner {
			m.Won++
		} else {
			m.Lost++
		}
	}
	return m
}

// MomentumChart renders PlayerMomentum as a PNG line chart.
func (s *RatingService) MomentumChart(ctx context.Context, playerID uuid.UUID, since string) ([]byte, error) {
	m, err := s.PlayerMomentum(ctx, playerID, since)
	if err != nil {
		return nil, err
	}
	return renderMomentumChart(m, DefaultPalette)
}
