package battles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
)

func (r *battlesRepo) MarkAccepted(ctx context.Context, tx *sql.Tx, id uuid.UUID, side models.Side, at time.Time) error {
	query := `
		UPDATE battles
		SET user_a_accepted = TRUE, user_a_accepted_at = $2, updated_at = now()
		WHERE id = $1
		  AND status = 'pending_acceptance'
		  AND NOT user_a_accepted
	`
	if side == models.SideB {
		query = `
		UPDATE battles
		SET user_b_accepted = TRUE, user_b_accepted_at = $2, updated_at = now()
		WHERE id = $1
		  AND status = 'pending_acceptance'
		  AND NOT user_b_accepted
	`
	}

	res, err := tx.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark accepted: %w", err)
	}

	return expectOne(res)
}

func (r *battlesRepo) Activate(ctx context.Context, tx *sql.Tx, id uuid.UUID, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE battles
		SET status = 'active', activated_at = $2, updated_at = now()
		WHERE id = $1
		  AND status = 'pending_acceptance'
		  AND user_a_accepted
		  AND user_b_accepted
	`, id, at)
	if err != nil {
		return fmt.Errorf("activate battle: %w", err)
	}

	return expectOne(res)
}

func (r *battlesRepo) Cancel(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE battles
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1
		  AND status = 'pending_acceptance'
	`, id)
	if err != nil {
		return fmt.Errorf("cancel battle: %w", err)
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected != 1 {
		return battles.ErrStatusChanged
	}

	return nil
}
