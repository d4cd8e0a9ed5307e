package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationResponse string

const (
	ResponsePending  InvitationResponse = "pending"
	ResponseAccepted InvitationResponse = "accepted"
	ResponseDeclined InvitationResponse = "declined"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// BattleInvitation is the per-side audit trail of responses to a battle.
type BattleInvitation struct {
	BattleID         uuid.UUID          `json:"battle_id"`
	UserAResponse    InvitationResponse `json:"user_a_response"`
	UserARespondedAt *time.Time         `json:"user_a_responded_at,omitempty"`
	UserBResponse    InvitationResponse `json:"user_b_response"`
	UserBRespondedAt *time.Time         `json:"user_b_responded_at,omitempty"`
	Status           InvitationStatus   `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
}

func (i BattleInvitation) Response(side Side) InvitationResponse {
	if side == SideA {
		return i.UserAResponse
	}

	return i.UserBResponse
}

// BothResponded reports whether each side has answered.
func (i BattleInvitation) BothResponded() bool {
	return i.UserAResponse != ResponsePending && i.UserBResponse != ResponsePending
}
