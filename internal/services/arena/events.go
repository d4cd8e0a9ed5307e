package arena

import (
	"context"

	"github.com/fastprodman/battlearena/internal/models"
)

// Publisher fans committed battle transitions out to interested users.
type Publisher interface {
	Publish(ctx context.Context, ev models.BattleEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.BattleEvent) error { return nil }
