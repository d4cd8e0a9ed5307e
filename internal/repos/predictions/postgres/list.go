package predictions

import (
	"context"
	"fmt"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

func (r *predictionsRepo) ListSearchingByUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Prediction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+predictionCols+`
		FROM predictions
		WHERE user_id = $1
		  AND status = 'searching'
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Prediction, 0)

	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}

		out = append(out, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}

	return out, nil
}
