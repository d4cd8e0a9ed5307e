package predictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

func (r *predictionsRepo) Get(ctx context.Context, q pgutils.DBTX, id uuid.UUID) (models.Prediction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+predictionCols+`
		FROM predictions
		WHERE id = $1
	`, id)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Prediction{}, predictions.ErrPredictionNotFound
		}

		return models.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}

	return p, nil
}

func (r *predictionsRepo) LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Prediction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+predictionCols+`
		FROM predictions
		WHERE id = $1
		FOR UPDATE
	`, id)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Prediction{}, predictions.ErrPredictionNotFound
		}

		return models.Prediction{}, fmt.Errorf("lock prediction: %w", err)
	}

	return p, nil
}

func (r *predictionsRepo) TryLock(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Prediction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+predictionCols+`
		FROM predictions
		WHERE id = $1
		FOR UPDATE SKIP LOCKED
	`, id)

	p, err := scanPrediction(row)
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return models.Prediction{}, fmt.Errorf("try lock prediction: %w", err)
	}

	// no row: either it does not exist or someone holds it
	var exists bool

	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM predictions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("check prediction: %w", err)
	}

	if !exists {
		return models.Prediction{}, predictions.ErrPredictionNotFound
	}

	return models.Prediction{}, predictions.ErrPredictionLocked
}
