package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Opposite returns the direction a counterpart must have to be matched.
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}

	return DirectionUp
}

type PredictionStatus string

const (
	PredictionSearching PredictionStatus = "searching"
	PredictionMatched   PredictionStatus = "matched"
	PredictionCancelled PredictionStatus = "cancelled"
	PredictionResolved  PredictionStatus = "resolved"
)

// CanTransition reports whether a prediction may move from s to next.
//
//	searching -> matched | cancelled
//	matched   -> searching | resolved
func (s PredictionStatus) CanTransition(next PredictionStatus) bool {
	switch s {
	case PredictionSearching:
		return next == PredictionMatched || next == PredictionCancelled
	case PredictionMatched:
		return next == PredictionSearching || next == PredictionResolved
	default:
		return false
	}
}

type Prediction struct {
	ID             uuid.UUID        `json:"id"`
	UserID         string           `json:"user_id"`
	PredictedPrice decimal.Decimal  `json:"predicted_price"`
	Direction      Direction        `json:"direction"`
	Stake          decimal.Decimal  `json:"stake"`
	ReferencePrice decimal.Decimal  `json:"reference_price"`
	Status         PredictionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}
