package arena

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

// BattleView is a battle together with its invitation audit record.
type BattleView struct {
	Battle     models.Battle           `json:"battle"`
	Invitation models.BattleInvitation `json:"invitation"`
}

// BattleStatusView adds flags derived for the requesting side.
type BattleStatusView struct {
	BattleView

	Side             models.Side               `json:"side"`
	OpponentID       string                    `json:"opponent_id"`
	UserResponse     models.InvitationResponse `json:"user_response"`
	UserAccepted     bool                      `json:"user_accepted"`
	OpponentAccepted bool                      `json:"opponent_accepted"`
	BothAccepted     bool                      `json:"both_accepted"`
	BothResponded    bool                      `json:"both_responded"`
	AwaitingUser     bool                      `json:"awaiting_user"`
}

// GetBattle returns the battle and its invitation to either party.
func (s *Service) GetBattle(ctx context.Context, battleID uuid.UUID, userID string) (BattleView, error) {
	if userID == "" {
		return BattleView{}, ErrAuthRequired
	}

	var v BattleView

	// battle and invitation are read from one snapshot
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY`)
		if err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}

		b, err := s.battles.Get(ctx, tx, battleID)
		if err != nil {
			return mapBattleErr(err)
		}

		_, ok := b.SideOf(userID)
		if !ok {
			return fmt.Errorf("%w: not a party to this battle", ErrForbidden)
		}

		inv, err := s.invitations.Get(ctx, tx, battleID)
		if err != nil {
			return fmt.Errorf("get invitation: %w", err)
		}

		v = BattleView{Battle: b, Invitation: inv}

		return nil
	})
	if err != nil {
		return BattleView{}, fmt.Errorf("get battle: %w", err)
	}

	return v, nil
}

func (s *Service) BattleStatus(ctx context.Context, battleID uuid.UUID, userID string) (BattleStatusView, error) {
	v, err := s.GetBattle(ctx, battleID, userID)
	if err != nil {
		return BattleStatusView{}, err
	}

	b := v.Battle
	side, _ := b.SideOf(userID)
	opponent := models.SideB
	if side == models.SideB {
		opponent = models.SideA
	}

	return BattleStatusView{
		BattleView:       v,
		Side:             side,
		OpponentID:       b.Opponent(side),
		UserResponse:     v.Invitation.Response(side),
		UserAccepted:     b.Accepted(side),
		OpponentAccepted: b.Accepted(opponent),
		BothAccepted:     b.BothAccepted(),
		BothResponded:    v.Invitation.BothResponded(),
		AwaitingUser:     b.Status == models.BattlePendingAcceptance && !b.Accepted(side),
	}, nil
}

// ListPendingForUser returns pending battles still waiting on userID's answer, oldest first.
func (s *Service) ListPendingForUser(ctx context.Context, userID string) ([]models.Battle, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	out, err := s.battles.ListPendingForUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending battles: %w", err)
	}

	return out, nil
}

// ListBattles returns every battle userID is a party to, newest first.
func (s *Service) ListBattles(ctx context.Context, userID string) ([]models.Battle, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	out, err := s.battles.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}

	return out, nil
}
