// Package redisbus publishes committed battle transitions to per-user Redis
// Pub/Sub channels so connected clients can refresh without polling.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fastprodman/battlearena/internal/config"
	"github.com/fastprodman/battlearena/internal/models"
)

type Publisher struct {
	rdb    *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConfig) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Publisher{rdb: rdb, prefix: cfg.ChannelPrefix}, nil
}

// UserChannel is the channel a user's client subscribes to.
func UserChannel(prefix, userID string) string {
	return prefix + ":user:" + userID
}

// Publish sends ev as JSON to both parties' channels.
func (p *Publisher) Publish(ctx context.Context, ev models.BattleEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	for _, userID := range ev.Recipients() {
		ch := UserChannel(p.prefix, userID)

		err = p.rdb.Publish(ctx, ch, payload).Err()
		if err != nil {
			return fmt.Errorf("redis publish %s: %w", ch, err)
		}
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
