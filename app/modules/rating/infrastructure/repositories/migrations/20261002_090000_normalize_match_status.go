package ratingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Older clients wrote "rated", "finalized" and "complete" for a rated match.
// They are folded into "completed" once, and the column is then constrained
// to the four workflow states.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Normalizing rating match statuses...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			res, err := tx.ExecContext(ctx, `
				UPDATE rating_matches
				SET status = 'completed'
				WHERE status IN ('rated', 'finalized', 'complete');
			`)
			if err != nil {
				return fmt.Errorf("failed to normalize statuses: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				fmt.Printf("Normalized %d match status(es)\n", n)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE rating_matches
					ADD CONSTRAINT chk_rating_matches_status
					CHECK (status IN ('pending', 'confirmed', 'disputed', 'completed'));
			`); err != nil {
				return fmt.Errorf("failed to add status constraint: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating match status constraint...")
		_, err := db.ExecContext(ctx, `ALTER TABLE rating_matches DROP CONSTRAINT IF EXISTS chk_rating_matches_status;`)
		return err
	})
}
