package predictions

import (
	"database/sql"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

var _ predictions.Predictions = (*predictionsRepo)(nil)

type predictionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *predictionsRepo {
	return &predictionsRepo{db: db}
}

const predictionCols = `id, user_id, predicted_price, direction, stake, reference_price, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (models.Prediction, error) {
	var p models.Prediction

	err := row.Scan(
		&p.ID, &p.UserID, &p.PredictedPrice, &p.Direction,
		&p.Stake, &p.ReferencePrice, &p.Status, &p.CreatedAt,
	)

	return p, err
}
