package arena

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
)

// Amounts are stored as NUMERIC(20,8).
const (
	maxScale       = 8
	maxIntegerPart = 12
)

var (
	validate = newValidator()

	maxAmount = decimal.New(1, maxIntegerPart)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}

		return d.InexactFloat64()
	}, decimal.Decimal{})

	return v
}

type SubmitInput struct {
	UserID         string
	PredictedPrice decimal.Decimal  `validate:"gt=0"`
	Direction      models.Direction `validate:"oneof=up down"`
	Stake          decimal.Decimal  `validate:"gt=0"`
	ReferencePrice decimal.Decimal  `validate:"gt=0"`
}

func (in SubmitInput) validate() error {
	err := validate.Struct(in)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	amounts := []struct {
		name string
		v    decimal.Decimal
	}{
		{"predicted_price", in.PredictedPrice},
		{"stake", in.Stake},
		{"reference_price", in.ReferencePrice},
	}
	for _, a := range amounts {
		if !a.v.Equal(a.v.Truncate(maxScale)) {
			return fmt.Errorf("%w: %s has more than %d decimal places", ErrValidation, a.name, maxScale)
		}
		if a.v.GreaterThanOrEqual(maxAmount) {
			return fmt.Errorf("%w: %s is too large", ErrValidation, a.name)
		}
	}

	return nil
}

// Submit validates the input and stores a new prediction in the searching pool.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (models.Prediction, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return models.Prediction{}, ErrAuthRequired
	}

	err := in.validate()
	if err != nil {
		return models.Prediction{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Prediction{}, fmt.Errorf("new prediction id: %w", err)
	}

	p := models.Prediction{
		ID:             id,
		UserID:         in.UserID,
		PredictedPrice: in.PredictedPrice,
		Direction:      in.Direction,
		Stake:          in.Stake,
		ReferencePrice: in.ReferencePrice,
		Status:         models.PredictionSearching,
		CreatedAt:      s.timestamp(),
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.predictions.Insert(ctx, tx, p)
	})
	if err != nil {
		if errors.Is(err, predictions.ErrDuplicatePrediction) {
			return models.Prediction{}, fmt.Errorf("submit prediction: %w: %w", ErrConflict, err)
		}

		return models.Prediction{}, fmt.Errorf("submit prediction: %w", err)
	}

	return p, nil
}

// Cancel withdraws a searching prediction owned by userID.
func (s *Service) Cancel(ctx context.Context, predictionID uuid.UUID, userID string) (models.Prediction, error) {
	if userID == "" {
		return models.Prediction{}, ErrAuthRequired
	}

	var p models.Prediction

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		p, err = s.predictions.LockForUpdate(ctx, tx, predictionID)
		if err != nil {
			return mapPredictionErr(err)
		}

		if p.UserID != userID {
			return fmt.Errorf("%w: prediction belongs to another user", ErrForbidden)
		}

		if !p.Status.CanTransition(models.PredictionCancelled) {
			return fmt.Errorf("%w: prediction is %s", ErrConflict, p.Status)
		}

		err = s.predictions.Cancel(ctx, tx, p.ID)
		if err != nil {
			return mapPredictionErr(err)
		}

		p.Status = models.PredictionCancelled

		return nil
	})
	if err != nil {
		return models.Prediction{}, fmt.Errorf("cancel prediction: %w", err)
	}

	return p, nil
}

// GetPrediction returns a prediction to its owner.
func (s *Service) GetPrediction(ctx context.Context, predictionID uuid.UUID, userID string) (models.Prediction, error) {
	if userID == "" {
		return models.Prediction{}, ErrAuthRequired
	}

	p, err := s.predictions.Get(ctx, s.db, predictionID)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("get prediction: %w", mapPredictionErr(err))
	}

	if p.UserID != userID {
		return models.Prediction{}, fmt.Errorf("get prediction: %w", ErrForbidden)
	}

	return p, nil
}

// ListSearching returns the user's predictions still waiting for an opponent, newest first.
func (s *Service) ListSearching(ctx context.Context, userID string) ([]models.Prediction, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	out, err := s.predictions.ListSearchingByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list searching predictions: %w", err)
	}

	return out, nil
}

func mapPredictionErr(err error) error {
	switch {
	case errors.Is(err, predictions.ErrPredictionNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, predictions.ErrNotSearching), errors.Is(err, predictions.ErrNotMatched):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
