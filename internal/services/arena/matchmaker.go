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
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

// MatchResult is NoMatch when Matched is false.
type MatchResult struct {
	Matched  bool       `json:"matched"`
	BattleID *uuid.UUID `json:"battle_id,omitempty"`
}

var (
	// errCandidateTaken means another matcher claimed the candidate first; the
	// whole attempt is rolled back and the search re-run.
	errCandidateTaken = errors.New("candidate taken by concurrent match")
	// errRequesterBusy means another matcher holds the requester as its own
	// candidate and waiting for it could deadlock.
	errRequesterBusy = errors.New("requester held by concurrent match")
)

// FindOrCreateMatch pairs a searching prediction with the oldest compatible
// opposing one and opens a battle between them.
//
// Each attempt is one transaction:
//
// 1) Read the requester; it must still be searching.
// 2) Lock the oldest candidate no other matcher holds: opposite direction,
// equal stake, other user.
// 3) Lock the requester and claim both predictions searching -> matched.
// 4) Insert the battle and its invitation.
//
// Losing a race in step 3 rolls back and retries, up to claimAttempts.
func (s *Service) FindOrCreateMatch(ctx context.Context, predictionID uuid.UUID) (MatchResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.claimAttempts; attempt++ {
		b, err := s.tryMatch(ctx, predictionID)
		switch {
		case err == nil:
			if b == nil {
				return MatchResult{Matched: false}, nil
			}

			slog.Info("battle created",
				"battle_id", b.ID,
				"user_a", b.UserAID,
				"user_b", b.UserBID,
				"attempt", attempt,
			)
			s.publish(ctx, models.NewBattleEvent(models.EventBattleCreated, *b, "", b.CreatedAt))

			return MatchResult{Matched: true, BattleID: &b.ID}, nil

		case errors.Is(err, errCandidateTaken), errors.Is(err, errRequesterBusy), pgutils.IsDeadlock(err):
			slog.Debug("match attempt lost race",
				"prediction_id", predictionID,
				"attempt", attempt,
				"error", err,
			)

			lastErr = err

			continue

		default:
			return MatchResult{}, fmt.Errorf("find match: %w", err)
		}
	}

	return MatchResult{}, fmt.Errorf("find match: %w: %d attempts exhausted: %w", ErrConflict, s.claimAttempts, lastErr)
}

// tryMatch returns a nil battle when there is no candidate.
func (s *Service) tryMatch(ctx context.Context, predictionID uuid.UUID) (*models.Battle, error) {
	var created *models.Battle

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		req, err := s.predictions.Get(ctx, tx, predictionID)
		if err != nil {
			return mapPredictionErr(err)
		}

		if !req.Status.CanTransition(models.PredictionMatched) {
			return fmt.Errorf("%w: prediction is %s", ErrConflict, req.Status)
		}

		cand, err := s.predictions.FindCandidate(ctx, tx, req)
		if err != nil {
			if errors.Is(err, predictions.ErrNoCandidate) {
				return nil
			}

			return fmt.Errorf("find candidate: %w", err)
		}

		req, err = s.lockRequester(ctx, tx, req.ID, cand.ID)
		if err != nil {
			return err
		}

		err = s.claimPair(ctx, tx, req, cand)
		if err != nil {
			return err
		}

		b, err := s.openBattle(ctx, tx, req, cand)
		if err != nil {
			return err
		}

		created = &b

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// lockRequester locks the requester while the candidate is already held.
// A matcher only blocks on an id lower than the one it holds, so no two
// matchers can wait on each other; otherwise the attempt backs off.
func (s *Service) lockRequester(ctx context.Context, tx *sql.Tx, requesterID, candidateID uuid.UUID) (models.Prediction, error) {
	p, err := s.predictions.TryLock(ctx, tx, requesterID)
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, predictions.ErrPredictionLocked) {
		return models.Prediction{}, mapPredictionErr(err)
	}

	if requesterID.String() > candidateID.String() {
		return models.Prediction{}, errRequesterBusy
	}

	p, err = s.predictions.LockForUpdate(ctx, tx, requesterID)
	if err != nil {
		return models.Prediction{}, mapPredictionErr(err)
	}

	return p, nil
}

// claimPair flips both locked predictions to matched.
func (s *Service) claimPair(ctx context.Context, tx *sql.Tx, req, cand models.Prediction) error {
	if !req.Status.CanTransition(models.PredictionMatched) {
		return fmt.Errorf("%w: prediction is %s", ErrConflict, req.Status)
	}

	err := s.predictions.Claim(ctx, tx, req.ID)
	if err != nil {
		if errors.Is(err, predictions.ErrNotSearching) {
			return fmt.Errorf("%w: prediction was claimed concurrently: %w", ErrConflict, err)
		}

		return fmt.Errorf("claim prediction %s: %w", req.ID, err)
	}

	err = s.predictions.Claim(ctx, tx, cand.ID)
	if err != nil {
		if errors.Is(err, predictions.ErrNotSearching) {
			return errCandidateTaken
		}

		return fmt.Errorf("claim prediction %s: %w", cand.ID, err)
	}

	return nil
}

// openBattle inserts the battle (requester on side A) and its invitation.
func (s *Service) openBattle(ctx context.Context, tx *sql.Tx, req, cand models.Prediction) (models.Battle, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Battle{}, fmt.Errorf("new battle id: %w", err)
	}

	now := s.timestamp()

	b := models.Battle{
		ID:            id,
		UserAID:       req.UserID,
		UserBID:       cand.UserID,
		PredictionAID: req.ID,
		PredictionBID: cand.ID,
		Status:        models.BattlePendingAcceptance,
		CreatedAt:     now,
	}

	err = s.battles.Insert(ctx, tx, b)
	if err != nil {
		if errors.Is(err, battles.ErrPredictionInOpenBattle) {
			return models.Battle{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}

		return models.Battle{}, fmt.Errorf("insert battle: %w", err)
	}

	err = s.invitations.Insert(ctx, tx, models.BattleInvitation{
		BattleID:      b.ID,
		UserAResponse: models.ResponsePending,
		UserBResponse: models.ResponsePending,
		Status:        models.InvitationPending,
		CreatedAt:     now,
	})
	if err != nil {
		return models.Battle{}, fmt.Errorf("insert invitation: %w", err)
	}

	return b, nil
}
