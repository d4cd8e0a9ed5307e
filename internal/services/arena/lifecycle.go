package arena

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
)

type AcceptResult struct {
	UserAccepted bool                `json:"user_accepted"`
	BothAccepted bool                `json:"both_accepted"`
	BattleStatus models.BattleStatus `json:"battle_status"`
}

type DeclineResult struct {
	BattleCancelled  bool `json:"battle_cancelled"`
	PredictionsReset bool `json:"predictions_reset"`
}

// Accept records userID's acceptance and activates the battle once both sides
// have accepted. Accepting again is a no-op returning the current state.
func (s *Service) Accept(ctx context.Context, battleID uuid.UUID, userID string) (AcceptResult, error) {
	if userID == "" {
		return AcceptResult{}, ErrAuthRequired
	}

	var (
		b      models.Battle
		events []models.BattleEvent
	)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		b, err = s.lockBattleForParty(ctx, tx, battleID, userID)
		if err != nil {
			return err
		}

		side, _ := b.SideOf(userID)

		switch {
		case b.Status.Terminal():
			return fmt.Errorf("%w: battle is %s", ErrConflict, b.Status)
		case b.Status == models.BattleActive:
			return nil
		}

		if b.Accepted(side) {
			return nil
		}

		now := s.timestamp()

		err = s.battles.MarkAccepted(ctx, tx, b.ID, side, now)
		if err != nil {
			return mapBattleErr(err)
		}

		err = s.invitations.SetResponse(ctx, tx, b.ID, side, models.ResponseAccepted, now)
		if err != nil {
			return err
		}

		if side == models.SideA {
			b.UserAAccepted, b.UserAAcceptAt = true, &now
		} else {
			b.UserBAccepted, b.UserBAcceptAt = true, &now
		}

		events = append(events, models.NewBattleEvent(models.EventBattleAccepted, b, userID, now))

		if !b.BothAccepted() {
			return nil
		}

		err = s.battles.Activate(ctx, tx, b.ID, now)
		if err != nil {
			return mapBattleErr(err)
		}

		err = s.invitations.SetStatus(ctx, tx, b.ID, models.InvitationAccepted)
		if err != nil {
			return err
		}

		b.Status, b.ActivatedAt = models.BattleActive, &now
		events = append(events, models.NewBattleEvent(models.EventBattleActivated, b, userID, now))

		return nil
	})
	if err != nil {
		return AcceptResult{}, fmt.Errorf("accept battle: %w", err)
	}

	if b.Status == models.BattleActive && len(events) > 0 {
		slog.Info("battle activated", "battle_id", b.ID)
	}

	s.publish(ctx, events...)

	side, _ := b.SideOf(userID)

	return AcceptResult{
		UserAccepted: b.Accepted(side),
		BothAccepted: b.BothAccepted(),
		BattleStatus: b.Status,
	}, nil
}

// Decline cancels a pending battle and returns both predictions to the pool
// in the same transaction.
func (s *Service) Decline(ctx context.Context, battleID uuid.UUID, userID string) (DeclineResult, error) {
	if userID == "" {
		return DeclineResult{}, ErrAuthRequired
	}

	var b models.Battle

	now := s.timestamp()

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		b, err = s.lockBattleForParty(ctx, tx, battleID, userID)
		if err != nil {
			return err
		}

		if b.Status != models.BattlePendingAcceptance {
			return fmt.Errorf("%w: battle is %s", ErrConflict, b.Status)
		}

		side, _ := b.SideOf(userID)

		err = s.battles.Cancel(ctx, tx, b.ID)
		if err != nil {
			return mapBattleErr(err)
		}

		err = s.invitations.Decline(ctx, tx, b.ID, side, now)
		if err != nil {
			return err
		}

		err = s.predictions.Release(ctx, tx, b.PredictionAID, b.PredictionBID)
		if err != nil {
			return mapPredictionErr(err)
		}

		b.Status = models.BattleCancelled

		return nil
	})
	if err != nil {
		return DeclineResult{}, fmt.Errorf("decline battle: %w", err)
	}

	slog.Info("battle cancelled", "battle_id", b.ID, "declined_by", userID)
	s.publish(ctx, models.NewBattleEvent(models.EventBattleCancelled, b, userID, now))

	return DeclineResult{BattleCancelled: true, PredictionsReset: true}, nil
}

// lockBattleForParty locks the battle row and checks userID is one of its sides.
func (s *Service) lockBattleForParty(ctx context.Context, tx *sql.Tx, battleID uuid.UUID, userID string) (models.Battle, error) {
	b, err := s.battles.LockForUpdate(ctx, tx, battleID)
	if err != nil {
		return models.Battle{}, mapBattleErr(err)
	}

	_, ok := b.SideOf(userID)
	if !ok {
		return models.Battle{}, fmt.Errorf("%w: not a party to this battle", ErrForbidden)
	}

	return b, nil
}

func mapBattleErr(err error) error {
	switch {
	case errors.Is(err, battles.ErrBattleNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, battles.ErrStatusChanged), errors.Is(err, battles.ErrPredictionInOpenBattle):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
