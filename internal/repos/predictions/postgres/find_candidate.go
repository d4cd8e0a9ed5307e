package predictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

// FindCandidate picks the oldest searching prediction with the opposite
// direction, an equal stake and a different owner. Ties on created_at fall
// back to id so the order is total. Rows locked by concurrent matchers are
// skipped so they spread over the pool instead of queueing on its head.
func (r *predictionsRepo) FindCandidate(ctx context.Context, tx *sql.Tx, req models.Prediction) (models.Prediction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+predictionCols+`
		FROM predictions
		WHERE status = 'searching'
		  AND direction = $1
		  AND stake = $2
		  AND user_id <> $3
		  AND id <> $4
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, string(req.Direction.Opposite()), req.Stake, req.UserID, req.ID)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Prediction{}, predictions.ErrNoCandidate
		}

		return models.Prediction{}, fmt.Errorf("find candidate: %w", err)
	}

	return p, nil
}
