package invitations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/invitations"
)

func (r *invitationsRepo) SetResponse(
	ctx context.Context,
	tx *sql.Tx,
	battleID uuid.UUID,
	side models.Side,
	resp models.InvitationResponse,
	at time.Time,
) error {
	query := `
		UPDATE battle_invitations
		SET user_a_response = $2, user_a_responded_at = $3, updated_at = now()
		WHERE battle_id = $1
		  AND user_a_response = 'pending'
	`
	if side == models.SideB {
		query = `
		UPDATE battle_invitations
		SET user_b_response = $2, user_b_responded_at = $3, updated_at = now()
		WHERE battle_id = $1
		  AND user_b_response = 'pending'
	`
	}

	_, err := tx.ExecContext(ctx, query, battleID, string(resp), at)
	if err != nil {
		return fmt.Errorf("set invitation response: %w", err)
	}

	return nil
}

func (r *invitationsRepo) SetStatus(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, status models.InvitationStatus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE battle_invitations
		SET status = $2, updated_at = now()
		WHERE battle_id = $1
	`, battleID, string(status))
	if err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return invitations.ErrInvitationNotFound
	}

	return nil
}

func (r *invitationsRepo) Decline(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, side models.Side, at time.Time) error {
	query := `
		UPDATE battle_invitations
		SET user_a_response = 'declined', user_a_responded_at = $2,
		    status = 'declined', updated_at = now()
		WHERE battle_id = $1
	`
	if side == models.SideB {
		query = `
		UPDATE battle_invitations
		SET user_b_response = 'declined', user_b_responded_at = $2,
		    status = 'declined', updated_at = now()
		WHERE battle_id = $1
	`
	}

	res, err := tx.ExecContext(ctx, query, battleID, at)
	if err != nil {
		return fmt.Errorf("decline invitation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return invitations.ErrInvitationNotFound
	}

	return nil
}
