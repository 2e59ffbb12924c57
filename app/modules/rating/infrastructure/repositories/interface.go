package ratingdb

import (
	"context"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PlayerRatingStore owns player ratings.
type PlayerRatingStore interface {
	// GetRatings returns the stored rating of each id that exists.
	GetRatings(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) (map[uuid.UUID]*PlayerRating, error)

	// GetRatingsForUpdate is GetRatings with row locks taken in player_id order.
	GetRatingsForUpdate(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) (map[uuid.UUID]*PlayerRating, error)

	// EnsurePlayers creates missing players at the default rating.
	EnsurePlayers(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) error

	// UpdateRatings writes new ratings and bumps matches_played.
	UpdateRatings(ctx context.Context, db bun.IDB, updates []RatingUpdate) error
}

// MatchStore owns matches and their participants.
type MatchStore interface {
	CreateMatch(ctx context.Context, db bun.IDB, match *Match, participants []*Participant) error
	GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error)

	// GetMatchForUpdate reads the match under a row lock. It must run in a transaction.
	GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error)

	GetParticipants(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*Participant, error)

	// UpdateMatchStatus moves a non-terminal match to status.
	UpdateMatchStatus(ctx context.Context, db bun.IDB, matchID uuid.UUID, status ratingdomain.Status) error

	// FinalizeMatch records participant results and marks the match completed.
	FinalizeMatch(ctx context.Context, db bun.IDB, rec FinalizeRecord) error

	// GetRatingHistory lists a player's finalized matches since the given time, oldest first.
	GetRatingHistory(ctx context.Context, db bun.IDB, playerID uuid.UUID, since time.Time) ([]HistoryEntry, error)
}

// ConfirmationStore owns confirmation rows.
type ConfirmationStore interface {
	CreateConfirmations(ctx context.Context, db bun.IDB, rows []*Confirmation) error

	// UpsertConfirmation writes one user's answer. The last write wins.
	UpsertConfirmation(ctx context.Context, db bun.IDB, row *Confirmation) error

	GetConfirmations(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*Confirmation, error)
}

// Repository is the full persistence surface of the rating module.
type Repository interface {
	PlayerRatingStore
	MatchStore
	ConfirmationStore
}
