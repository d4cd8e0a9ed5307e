package battles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
)

func (r *battlesRepo) Insert(ctx context.Context, tx *sql.Tx, b models.Battle) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO battles (
			id, user_a_id, user_b_id, prediction_a_id, prediction_b_id, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		b.ID, b.UserAID, b.UserBID, b.PredictionAID, b.PredictionBID,
		string(b.Status), b.CreatedAt,
	)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return battles.ErrPredictionInOpenBattle
		}

		return fmt.Errorf("insert battle: %w", err)
	}

	return nil
}
