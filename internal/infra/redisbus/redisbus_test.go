package redisbus

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fastprodman/battlearena/internal/config"
	"github.com/fastprodman/battlearena/internal/models"
)

func TestUserChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, user, want string
	}{
		{"arena", "u1", "arena:user:u1"},
		{"arena", "wallet:0xabc", "arena:user:wallet:0xabc"},
		{"", "u1", ":user:u1"},
	}

	for _, tt := range tests {
		if got := UserChannel(tt.prefix, tt.user); got != tt.want {
			t.Errorf("UserChannel(%q, %q) = %q, want %q", tt.prefix, tt.user, got, tt.want)
		}
	}
}

// Needs a live Redis; REDIS_TEST_ADDR overrides localhost:6379.
func TestPublisher_PublishesToBothParties(t *testing.T) {
	t.Parallel()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	cfg := config.RedisConfig{Addr: addr, ChannelPrefix: "test-" + uuid.NewString()}

	pub, err := New(ctx, cfg)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	defer pub.Close()

	sub := redis.NewClient(&redis.Options{Addr: addr})
	defer sub.Close()

	ps := sub.Subscribe(ctx, UserChannel(cfg.ChannelPrefix, "alice"), UserChannel(cfg.ChannelPrefix, "bob"))
	defer ps.Close()

	_, err = ps.Receive(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev := models.BattleEvent{
		Type:     models.EventBattleCreated,
		BattleID: uuid.New(),
		UserAID:  "alice",
		UserBID:  "bob",
		Status:   models.BattlePendingAcceptance,
		At:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	err = pub.Publish(ctx, ev)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	seen := map[string]bool{}
	for range 2 {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			t.Fatalf("receive: %v", err)
		}

		var got models.BattleEvent
		err = json.Unmarshal([]byte(msg.Payload), &got)
		if err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.BattleID != ev.BattleID || got.Type != ev.Type {
			t.Fatalf("payload mismatch: %+v", got)
		}

		seen[msg.Channel] = true
	}

	if len(seen) != 2 {
		t.Fatalf("want messages on two channels, got %v", seen)
	}
}
