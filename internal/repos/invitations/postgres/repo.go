package invitations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/invitations"
)

var _ invitations.Invitations = (*invitationsRepo)(nil)

type invitationsRepo struct{ db *sql.DB }

func New(db *sql.DB) *invitationsRepo {
	return &invitationsRepo{db: db}
}

func (r *invitationsRepo) Insert(ctx context.Context, tx *sql.Tx, inv models.BattleInvitation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO battle_invitations (
			battle_id, user_a_response, user_b_response, status, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`,
		inv.BattleID, string(inv.UserAResponse), string(inv.UserBResponse),
		string(inv.Status), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}

	return nil
}

func (r *invitationsRepo) Get(ctx context.Context, q pgutils.DBTX, battleID uuid.UUID) (models.BattleInvitation, error) {
	var inv models.BattleInvitation

	err := q.QueryRowContext(ctx, `
		SELECT battle_id, user_a_response, user_a_responded_at,
		       user_b_response, user_b_responded_at, status, created_at
		FROM battle_invitations
		WHERE battle_id = $1
	`, battleID).Scan(
		&inv.BattleID, &inv.UserAResponse, &inv.UserARespondedAt,
		&inv.UserBResponse, &inv.UserBRespondedAt, &inv.Status, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BattleInvitation{}, invitations.ErrInvitationNotFound
		}

		return models.BattleInvitation{}, fmt.Errorf("get invitation: %w", err)
	}

	return inv, nil
}
