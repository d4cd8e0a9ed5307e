package models

import (
	"time"

	"github.com/google/uuid"
)

type BattleEventType string

const (
	EventBattleCreated   BattleEventType = "battle.created"
	EventBattleAccepted  BattleEventType = "battle.accepted"
	EventBattleActivated BattleEventType = "battle.activated"
	EventBattleCancelled BattleEventType = "battle.cancelled"
)

// BattleEvent is emitted after a battle transition has been committed.
type BattleEvent struct {
	Type     BattleEventType `json:"type"`
	BattleID uuid.UUID       `json:"battle_id"`
	UserAID  string          `json:"user_a_id"`
	UserBID  string          `json:"user_b_id"`
	Status   BattleStatus    `json:"status"`
	ActorID  string          `json:"actor_id,omitempty"`
	At       time.Time       `json:"at"`
}

// Recipients returns the user ids that should be notified.
func (e BattleEvent) Recipients() []string {
	return []string{e.UserAID, e.UserBID}
}

func NewBattleEvent(t BattleEventType, b Battle, actorID string, at time.Time) BattleEvent {
	return BattleEvent{
		Type:     t,
		BattleID: b.ID,
		UserAID:  b.UserAID,
		UserBID:  b.UserBID,
		Status:   b.Status,
		ActorID:  actorID,
		At:       at,
	}
}
