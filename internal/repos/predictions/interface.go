package predictions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

var (
	ErrPredictionNotFound  = errors.New("prediction not found")
	ErrNotSearching        = errors.New("prediction is not searching")
	ErrNotMatched          = errors.New("prediction is not matched")
	ErrNoCandidate         = errors.New("no matching candidate")
	ErrDuplicatePrediction = errors.New("duplicate prediction id")
	// ErrPredictionLocked is returned by TryLock when another transaction
	// holds the row.
	ErrPredictionLocked = errors.New("prediction locked by another transaction")
)

type Predictions interface {
	Insert(ctx context.Context, tx *sql.Tx, p models.Prediction) error
	Get(ctx context.Context, q pgutils.DBTX, id uuid.UUID) (models.Prediction, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Prediction, error)
	// TryLock locks the row without waiting; ErrPredictionLocked if it is held.
	TryLock(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Prediction, error)
	// FindCandidate locks and returns the oldest searching prediction that can
	// be matched against req, skipping rows other transactions hold, or
	// ErrNoCandidate.
	FindCandidate(ctx context.Context, tx *sql.Tx, req models.Prediction) (models.Prediction, error)
	// Claim moves a prediction searching -> matched; ErrNotSearching if it was not searching.
	Claim(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	// Cancel moves a prediction searching -> cancelled; ErrNotSearching if it was not searching.
	Cancel(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	// Release moves both predictions matched -> searching; ErrNotMatched unless both moved.
	Release(ctx context.Context, tx *sql.Tx, a, b uuid.UUID) error
	ListSearchingByUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Prediction, error)
}
