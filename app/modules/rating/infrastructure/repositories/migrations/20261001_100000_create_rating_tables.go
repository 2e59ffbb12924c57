package ratingmigrations

import (
	"context"
	"fmt"

	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*ratingdb.PlayerRating)(nil),
				(*ratingdb.Match)(nil),
				(*ratingdb.Participant)(nil),
				(*ratingdb.Confirmation)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", m, err)
				}
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE rating_match_participants
					ADD CONSTRAINT fk_rating_match_participants_match
					FOREIGN KEY (match_id) REFERENCES rating_matches(id) ON DELETE CASCADE;
				ALTER TABLE rating_match_confirmations
					ADD CONSTRAINT fk_rating_match_confirmations_match
					FOREIGN KEY (match_id) REFERENCES rating_matches(id) ON DELETE CASCADE;
				ALTER TABLE rating_match_confirmations
					ADD CONSTRAINT chk_rating_match_confirmations_exclusive
					CHECK (NOT (confirmed AND rejected));
				ALTER TABLE rating_match_participants
					ADD CONSTRAINT chk_rating_match_participants_team
					CHECK (team_number IN (1, 2));
			`); err != nil {
				return fmt.Errorf("failed to add rating constraints: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_rating_matches_status ON rating_matches(status);
				CREATE INDEX IF NOT EXISTS idx_rating_match_participants_player ON rating_match_participants(player_id);
				CREATE INDEX IF NOT EXISTS idx_rating_matches_finalized_at ON rating_matches(finalized_at) WHERE finalized_at IS NOT NULL;
			`); err != nil {
				return fmt.Errorf("failed to create rating indexes: %w", err)
			}

			fmt.Println("Rating tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back rating tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*ratingdb.Confirmation)(nil),
				(*ratingdb.Participant)(nil),
				(*ratingdb.Match)(nil),
				(*ratingdb.PlayerRating)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx); err != nil {
					return fmt.Errorf("failed to drop table for %T: %w", m, err)
				}
			}
			fmt.Println("Rating tables dropped successfully!")
			return nil
		})
	})
}
