package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new rating repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// -----------------------------------------------------------------------------
// Player ratings
// -----------------------------------------------------------------------------

func (r *Impl) GetRatings(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) (map[uuid.UUID]*PlayerRating, error) {
	return r.getRatings(ctx, r.resolveDB(db), playerIDs, false)
}

func (r *Impl) GetRatingsForUpdate(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) (map[uuid.UUID]*PlayerRating, error) {
	return r.getRatings(ctx, r.resolveDB(db), playerIDs, true)
}

func (r *Impl) getRatings(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID, lock bool) (map[uuid.UUID]*PlayerRating, error) {
	out := make(map[uuid.UUID]*PlayerRating, len(playerIDs))
	if len(playerIDs) == 0 {
		return out, nil
	}

	var rows []*PlayerRating
	q := db.NewSelect().
		Model(&rows).
		Where("player_id IN (?)", bun.In(playerIDs)).
		Order("player_id")
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ratingdb.GetRatings: %w", err)
	}
	for _, row := range rows {
		out[row.PlayerID] = row
	}
	return out, nil
}

func (r *Impl) EnsurePlayers(ctx context.Context, db bun.IDB, playerIDs []uuid.UUID) error {
	if len(playerIDs) == 0 {
		return nil
	}
	db = r.resolveDB(db)

	rows := make([]*PlayerRating, len(playerIDs))
	for i, id := range playerIDs {
		rows[i] = &PlayerRating{PlayerID: id, Rating: ratingdomain.DefaultRating}
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.EnsurePlayers: %w", err)
	}
	return nil
}

func (r *Impl) UpdateRatings(ctx context.Context, db bun.IDB, updates []RatingUpdate) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()

	// Same order as GetRatingsForUpdate so concurrent finalizers lock alike.
	sorted := slices.Clone(updates)
	slices.SortFunc(sorted, func(a, b RatingUpdate) int { return compareUUID(a.PlayerID, b.PlayerID) })

	for _, u := range sorted {
		res, err := db.NewUpdate().
			Model((*PlayerRating)(nil)).
			Set("rating = ?", u.Rating).
			Set("matches_played = matches_played + 1").
			Set("updated_at = ?", now).
			Where("player_id = ?", u.PlayerID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("ratingdb.UpdateRatings: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("ratingdb.UpdateRatings: player %s: %w", u.PlayerID, ErrNoRowsAffected)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Matches
// -----------------------------------------------------------------------------

func (r *Impl) CreateMatch(ctx context.Context, db bun.IDB, match *Match, participants []*Participant) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(match).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.CreateMatch: %w", err)
	}
	if len(participants) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&participants).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.CreateMatch: participants: %w", err)
	}
	return nil
}

func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error) {
	return r.getMatch(ctx, r.resolveDB(db), matchID, false)
}

func (r *Impl) GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error) {
	return r.getMatch(ctx, r.resolveDB(db), matchID, true)
}

func (r *Impl) getMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID, lock bool) (*Match, error) {
	match := new(Match)
	q := db.NewSelect().Model(match).Where("id = ?", matchID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetMatch: %w", err)
	}
	return match, nil
}

func (r *Impl) GetParticipants(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*Participant, error) {
	db = r.resolveDB(db)
	var rows []*Participant
	err := db.NewSelect().
		Model(&rows).
		Where("match_id = ?", matchID).
		Order("team_number", "player_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetParticipants: %w", err)
	}
	return rows, nil
}

func (r *Impl) UpdateMatchStatus(ctx context.Context, db bun.IDB, matchID uuid.UUID, status ratingdomain.Status) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Match)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", matchID).
		Where("status <> ?", ratingdomain.StatusCompleted).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.UpdateMatchStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ratingdb.UpdateMatchStatus: %w", ErrNoRowsAffected)
	}
	return nil
}

func (r *Impl) FinalizeMatch(ctx context.Context, db bun.IDB, rec FinalizeRecord) error {
	db = r.resolveDB(db)

	for _, p := range rec.Participants {
		res, err := db.NewUpdate().
			Model((*Participant)(nil)).
			Set("is_winner = ?", p.IsWinner).
			Set("rating_before = ?", p.RatingBefore).
			Set("rating_delta = ?", p.RatingDelta).
			Where("match_id = ?", rec.MatchID).
			Where("player_id = ?", p.PlayerID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("ratingdb.FinalizeMatch: participant %s: %w", p.PlayerID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("ratingdb.FinalizeMatch: participant %s: %w", p.PlayerID, ErrNoRowsAffected)
		}
	}

	res, err := db.NewUpdate().
		Model((*Match)(nil)).
		Set("status = ?", ratingdomain.StatusCompleted).
		Set("k_factor = ?", rec.KFactor).
		Set("margin = ?", rec.Margin).
		Set("finalized_at = ?", rec.FinalizedAt).
		Set("updated_at = ?", rec.FinalizedAt).
		Where("id = ?", rec.MatchID).
		Where("status <> ?", ratingdomain.StatusCompleted).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.FinalizeMatch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ratingdb.FinalizeMatch: %w", ErrNoRowsAffected)
	}
	return nil
}

func (r *Impl) GetRatingHistory(ctx context.Context, db bun.IDB, playerID uuid.UUID, since time.Time) ([]HistoryEntry, error) {
	db = r.resolveDB(db)
	var entries []HistoryEntry
	err := db.NewSelect().
		TableExpr("rating_match_participants AS mp").
		ColumnExpr("mp.match_id, m.category, m.finalized_at, mp.rating_before, mp.rating_delta, mp.is_winner").
		Join("JOIN rating_matches AS m ON m.id = mp.match_id").
		Where("mp.player_id = ?", playerID).
		Where("m.status = ?", ratingdomain.StatusCompleted).
		Where("m.finalized_at >= ?", since).
		OrderExpr("m.finalized_at ASC, mp.match_id ASC").
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetRatingHistory: %w", err)
	}
	return entries, nil
}

// -----------------------------------------------------------------------------
// Confirmations
// -----------------------------------------------------------------------------

func (r *Impl) CreateConfirmations(ctx context.Context, db bun.IDB, rows []*Confirmation) error {
	if len(rows) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.CreateConfirmations: %w", err)
	}
	return nil
}

func (r *Impl) UpsertConfirmation(ctx context.Context, db bun.IDB, row *Confirmation) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (match_id, user_id) DO UPDATE").
		Set("confirmed = EXCLUDED.confirmed").
		Set("rejected = EXCLUDED.rejected").
		Set("responded_at = EXCLUDED.responded_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.UpsertConfirmation: %w", err)
	}
	return nil
}

func (r *Impl) GetConfirmations(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*Confirmation, error) {
	db = r.resolveDB(db)
	var rows []*Confirmation
	err := db.NewSelect().
		Model(&rows).
		Where("match_id = ?", matchID).
		Order("user_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetConfirmations: %w", err)
	}
	return rows, nil
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
