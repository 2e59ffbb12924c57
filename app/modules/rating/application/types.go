package ratingservice

import (
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
)

// ProjectionRequest previews a result. Each team is given either as ratings
// or as player ids whose stored ratings are read. The winner is derived from
// the sets when WinnerTeam is zero.
type ProjectionRequest struct {
	Team1Ratings   []float64               `json:"team1_ratings,omitempty"`
	Team2Ratings   []float64               `json:"team2_ratings,omitempty"`
	Team1PlayerIDs []uuid.UUID             `json:"team1_player_ids,omitempty"`
	Team2PlayerIDs []uuid.UUID             `json:"team2_player_ids,omitempty"`
	Category       string                  `json:"category"`
	WinnerTeam     ratingdomain.TeamNumber `json:"winner_team,omitempty"`
	Sets           []ratingdomain.SetScore `json:"sets,omitempty"`
}

// SubmitMatchRequest is a proposed result.
type SubmitMatchRequest struct {
	MatchType   string                  `json:"match_type"`
	Category    string                  `json:"category"`
	Sets        []ratingdomain.SetScore `json:"sets"`
	Team1       []uuid.UUID             `json:"team1"`
	Team2       []uuid.UUID             `json:"team2"`
	SubmitterID uuid.UUID               `json:"submitter_id"`
	PlayedAt    string                  `json:"played_at,omitempty"`
}

// SubmitResult identifies the new match and who still has to answer.
type SubmitResult struct {
	MatchID     uuid.UUID               `json:"match_id"`
	MatchType   ratingdomain.MatchType  `json:"match_type"`
	Category    ratingdomain.Category   `json:"category"`
	Status      ratingdomain.Status     `json:"status"`
	Score       string                  `json:"score"`
	WinningTeam ratingdomain.TeamNumber `json:"winning_team"`
	SubmitterID uuid.UUID               `json:"submitter_id"`
	AwaitingIDs []uuid.UUID             `json:"awaiting_ids"`
}

// Readiness is the confirmation state of a match after an answer.
type Readiness struct {
	MatchID         uuid.UUID           `json:"match_id"`
	Status          ratingdomain.Status `json:"status"`
	Confirmed       int                 `json:"confirmed"`
	Rejected        int                 `json:"rejected"`
	Pending         int                 `json:"pending"`
	ReadyToFinalize bool                `json:"ready_to_finalize"`

	// StatusChanged is set when this answer moved the match to a new status.
	StatusChanged bool `json:"-"`
}

// FinalizeResult is the rating outcome of a match. Noop is set when the
// match had already been rated and nothing was applied by this call.
type FinalizeResult struct {
	MatchID     uuid.UUID               `json:"match_id"`
	Status      ratingdomain.Status     `json:"status"`
	Projection  ratingdomain.Projection `json:"projection"`
	FinalizedAt time.Time               `json:"finalized_at"`
	Noop        bool                    `json:"noop"`
}

// ParticipantView is a participant row as returned to callers.
type ParticipantView struct {
	PlayerID     uuid.UUID               `json:"player_id"`
	Team         ratingdomain.TeamNumber `json:"team"`
	IsWinner     *bool                   `json:"is_winner,omitempty"`
	RatingBefore *float64                `json:"rating_before,omitempty"`
	RatingDelta  *int                    `json:"rating_delta,omitempty"`
}

// ConfirmationView is a confirmation row as returned to callers.
type ConfirmationView struct {
	UserID      uuid.UUID  `json:"user_id"`
	Confirmed   bool       `json:"confirmed"`
	Rejected    bool       `json:"rejected"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// MatchView is a match with its participants and confirmations.
type MatchView struct {
	ID            uuid.UUID                `json:"id"`
	MatchType     ratingdomain.MatchType   `json:"match_type"`
	Category      ratingdomain.Category    `json:"category"`
	Sets          []ratingdomain.SetScore  `json:"sets"`
	Score         string                   `json:"score"`
	Status        ratingdomain.Status      `json:"status"`
	WinningTeam   *ratingdomain.TeamNumber `json:"winning_team"`
	SubmittedBy   uuid.UUID                `json:"submitted_by"`
	PlayedAt      *time.Time               `json:"played_at,omitempty"`
	KFactor       *int                     `json:"k_factor,omitempty"`
	Margin        *float64                 `json:"margin,omitempty"`
	FinalizedAt   *time.Time               `json:"finalized_at,omitempty"`
	Participants  []ParticipantView        `json:"participants"`
	Confirmations []ConfirmationView       `json:"confirmations"`
	Readiness     Readiness                `json:"readiness"`
}

// MomentumPoint is a player's rating after one finalized match.
type MomentumPoint struct {
	MatchID     uuid.UUID             `json:"match_id"`
	Category    ratingdomain.Category `json:"category"`
	FinalizedAt time.Time             `json:"finalized_at"`
	Delta       int                   `json:"delta"`
	RatingAfter float64               `json:"rating_after"`
}

// Momentum is a player's rating movement over a window.
type Momentum struct {
	PlayerID uuid.UUID       `json:"player_id"`
	Since    time.Time       `json:"since"`
	Points   []MomentumPoint `json:"points"`
	Total    int             `json:"total"`
	Won      int             `json:"won"`
	Lost     int             `json:"lost"`
}

// ImportRowResult is the outcome of one sheet row.
type ImportRowResult struct {
	Line    int        `json:"line"`
	MatchID *uuid.UUID `json:"match_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ImportReport summarizes an import.
type ImportReport struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}
