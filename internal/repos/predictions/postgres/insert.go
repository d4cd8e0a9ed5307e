package predictions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

func (r *predictionsRepo) Insert(ctx context.Context, tx *sql.Tx, p models.Prediction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO predictions (
			id, user_id, predicted_price, direction, stake, reference_price, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID, p.UserID, p.PredictedPrice, string(p.Direction),
		p.Stake, p.ReferencePrice, string(p.Status), p.CreatedAt,
	)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return predictions.ErrDuplicatePrediction
		}

		return fmt.Errorf("insert prediction: %w", err)
	}

	return nil
}
