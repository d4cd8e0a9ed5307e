package battles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	// ErrStatusChanged is returned when a conditional update found the battle
	// in a state other than the one it expected.
	ErrStatusChanged = errors.New("battle status changed")
	// ErrPredictionInOpenBattle is returned when a prediction already backs a
	// pending or active battle.
	ErrPredictionInOpenBattle = errors.New("prediction already in an open battle")
)

type Battles interface {
	Insert(ctx context.Context, tx *sql.Tx, b models.Battle) error
	Get(ctx context.Context, q pgutils.DBTX, id uuid.UUID) (models.Battle, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Battle, error)
	MarkAccepted(ctx context.Context, tx *sql.Tx, id uuid.UUID, side models.Side, at time.Time) error
	Activate(ctx context.Context, tx *sql.Tx, id uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	// ListPendingForUser returns pending battles still awaiting userID's answer, oldest first.
	ListPendingForUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Battle, error)
	// ListByUser returns every battle userID is a party to, newest first.
	ListByUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Battle, error)
}
