package predictions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

func (r *predictionsRepo) Claim(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE predictions
		SET status = 'matched', updated_at = now()
		WHERE id = $1
		  AND status = 'searching'
	`, id)
	if err != nil {
		return fmt.Errorf("claim prediction: %w", err)
	}

	return expectAffected(res, 1, predictions.ErrNotSearching)
}

func (r *predictionsRepo) Cancel(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE predictions
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1
		  AND status = 'searching'
	`, id)
	if err != nil {
		return fmt.Errorf("cancel prediction: %w", err)
	}

	return expectAffected(res, 1, predictions.ErrNotSearching)
}

func (r *predictionsRepo) Release(ctx context.Context, tx *sql.Tx, a, b uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE predictions
		SET status = 'searching', updated_at = now()
		WHERE id IN ($1, $2)
		  AND status = 'matched'
	`, a, b)
	if err != nil {
		return fmt.Errorf("release predictions: %w", err)
	}

	return expectAffected(res, 2, predictions.ErrNotMatched)
}

func expectAffected(res sql.Result, want int64, sentinel error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected != want {
		return sentinel
	}

	return nil
}
