package ratingdb

import (
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PlayerRating is a player's current rating. Only finalization writes it.
type PlayerRating struct {
	bun.BaseModel `bun:"table:player_ratings,alias:pr"`

	PlayerID      uuid.UUID `bun:"player_id,pk,type:uuid"`
	Rating        float64   `bun:"rating,notnull,default:1000"`
	MatchesPlayed int       `bun:"matches_played,notnull,default:0"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Match is a submitted result and its workflow state.
type Match struct {
	bun.BaseModel `bun:"table:rating_matches,alias:m"`

	ID          uuid.UUID                `bun:"id,pk,type:uuid"`
	MatchType   ratingdomain.MatchType   `bun:"match_type,notnull"`
	Category    ratingdomain.Category    `bun:"category,notnull"`
	Sets        []ratingdomain.SetScore  `bun:"sets,type:jsonb,notnull"`
	Score       string                   `bun:"score,notnull"`
	Status      ratingdomain.Status      `bun:"status,notnull,default:'pending'"`
	WinningTeam *ratingdomain.TeamNumber `bun:"winning_team,type:smallint"`
	SubmittedBy uuid.UUID                `bun:"submitted_by,type:uuid,notnull"`
	PlayedAt    *time.Time               `bun:"played_at"`
	KFactor     *int                     `bun:"k_factor"`
	Margin      *float64                 `bun:"margin"`
	FinalizedAt *time.Time               `bun:"finalized_at"`
	CreatedAt   time.Time                `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time                `bun:",nullzero,notnull,default:current_timestamp"`
}

// Participant links a player to a side of a match. The rating columns are
// filled in at finalization.
type Participant struct {
	bun.BaseModel `bun:"table:rating_match_participants,alias:mp"`

	MatchID      uuid.UUID               `bun:"match_id,pk,type:uuid"`
	PlayerID     uuid.UUID               `bun:"player_id,pk,type:uuid"`
	TeamNumber   ratingdomain.TeamNumber `bun:"team_number,notnull,type:smallint"`
	IsWinner     *bool                   `bun:"is_winner"`
	RatingBefore *float64                `bun:"rating_before"`
	RatingDelta  *int                    `bun:"rating_delta"`
}

// Confirmation is one non-submitting participant's answer.
type Confirmation struct {
	bun.BaseModel `bun:"table:rating_match_confirmations,alias:mc"`

	MatchID     uuid.UUID  `bun:"match_id,pk,type:uuid"`
	UserID      uuid.UUID  `bun:"user_id,pk,type:uuid"`
	Confirmed   bool       `bun:"confirmed,notnull,default:false"`
	Rejected    bool       `bun:"rejected,notnull,default:false"`
	RespondedAt *time.Time `bun:"responded_at"`
	CreatedAt   time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
}

// State converts the row to the domain tally input.
func (c *Confirmation) State() ratingdomain.ConfirmationState {
	return ratingdomain.ConfirmationState{UserID: c.UserID, Confirmed: c.Confirmed, Rejected: c.Rejected}
}

// RatingUpdate is the new rating for one player.
type RatingUpdate struct {
	PlayerID uuid.UUID
	Rating   float64
}

// ParticipantResult is what finalization records on a participant row.
type ParticipantResult struct {
	PlayerID     uuid.UUID
	IsWinner     bool
	RatingBefore float64
	RatingDelta  int
}

// FinalizeRecord is everything written when a match is rated.
type FinalizeRecord struct {
	MatchID      uuid.UUID
	KFactor      int
	Margin       float64
	FinalizedAt  time.Time
	Participants []ParticipantResult
}

// HistoryEntry is one finalized match from a player's point of view.
type HistoryEntry struct {
	MatchID      uuid.UUID             `bun:"match_id"`
	Category     ratingdomain.Category `bun:"category"`
	FinalizedAt  time.Time             `bun:"finalized_at"`
	RatingBefore float64               `bun:"rating_before"`
	RatingDelta  int                   `bun:"rating_delta"`
	IsWinner     bool                  `bun:"is_winner"`
}
