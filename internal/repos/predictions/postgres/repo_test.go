package predictions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/battlearena/internal/models"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newPrediction(user string, dir models.Direction, stake string, age int) models.Prediction {
	return models.Prediction{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         user,
		PredictedPrice: decimal.RequireFromString("50000"),
		Direction:      dir,
		Stake:          decimal.RequireFromString(stake),
		ReferencePrice: decimal.RequireFromString("49500.25"),
		Status:         models.PredictionSearching,
		CreatedAt:      base.Add(time.Duration(age) * time.Second),
	}
}

func seed(t *testing.T, db *sql.DB, repo *predictionsRepo, ps ...models.Prediction) {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range ps {
		err = repo.Insert(ctx, tx, p)
		if err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit seed: %v", err)
	}
}

func setStatus(t *testing.T, db *sql.DB, id uuid.UUID, st models.PredictionStatus) {
	t.Helper()

	_, err := db.Exec(`UPDATE predictions SET status = $2 WHERE id = $1`, id, string(st))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
}
