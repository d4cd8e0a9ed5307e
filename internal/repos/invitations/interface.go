package invitations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

var ErrInvitationNotFound = errors.New("invitation not found")

type Invitations interface {
	Insert(ctx context.Context, tx *sql.Tx, inv models.BattleInvitation) error
	Get(ctx context.Context, q pgutils.DBTX, battleID uuid.UUID) (models.BattleInvitation, error)
	// SetResponse records one side's answer. Answers already recorded are kept.
	SetResponse(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, side models.Side, resp models.InvitationResponse, at time.Time) error
	SetStatus(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, status models.InvitationStatus) error
	// Decline records side's answer as declined, replacing an earlier
	// acceptance, and marks the invitation declined.
	Decline(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, side models.Side, at time.Time) error
}
