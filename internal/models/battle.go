package models

import (
	"time"

	"github.com/google/uuid"
)

type BattleStatus string

const (
	BattlePendingAcceptance BattleStatus = "pending_acceptance"
	BattleActive            BattleStatus = "active"
	BattleCancelled         BattleStatus = "cancelled"
	BattleResolved          BattleStatus = "resolved"
)

// Terminal reports whether no further lifecycle transition is possible.
func (s BattleStatus) Terminal() bool {
	return s == BattleCancelled || s == BattleResolved
}

// Side identifies which party of a battle a user is.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

type Battle struct {
	ID            uuid.UUID    `json:"id"`
	UserAID       string       `json:"user_a_id"`
	UserBID       string       `json:"user_b_id"`
	PredictionAID uuid.UUID    `json:"prediction_a_id"`
	PredictionBID uuid.UUID    `json:"prediction_b_id"`
	UserAAccepted bool         `json:"user_a_accepted"`
	UserAAcceptAt *time.Time   `json:"user_a_accepted_at,omitempty"`
	UserBAccepted bool         `json:"user_b_accepted"`
	UserBAcceptAt *time.Time   `json:"user_b_accepted_at,omitempty"`
	Status        BattleStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	ActivatedAt   *time.Time   `json:"activated_at,omitempty"`
}

// SideOf returns the side userID plays in the battle, or false if the user is
// not a party.
func (b Battle) SideOf(userID string) (Side, bool) {
	switch userID {
	case "":
		return "", false
	case b.UserAID:
		return SideA, true
	case b.UserBID:
		return SideB, true
	default:
		return "", false
	}
}

func (b Battle) Accepted(side Side) bool {
	if side == SideA {
		return b.UserAAccepted
	}

	return b.UserBAccepted
}

func (b Battle) BothAccepted() bool {
	return b.UserAAccepted && b.UserBAccepted
}

// Opponent returns the user id on the other side.
func (b Battle) Opponent(side Side) string {
	if side == SideA {
		return b.UserBID
	}

	return b.UserAID
}
