package arena

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/battlearena/internal/infra/pgtestutil"
	"github.com/fastprodman/battlearena/internal/models"
)

// stepClock advances one second per reading so creation order is strict.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur = c.cur.Add(time.Second)

	return c.cur
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.BattleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.BattleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, ev)

	return nil
}

func (p *recordingPublisher) types() []models.BattleEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.BattleEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}

	return out
}

func newTestService(t *testing.T, opts ...Option) (*Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	clock := &stepClock{cur: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)

	return New(db, opts...), db
}

func testCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 15*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustSubmit(t *testing.T, s *Service, user string, dir models.Direction, stake string) models.Prediction {
	t.Helper()

	p, err := s.Submit(testCtx(t), SubmitInput{
		UserID:         user,
		PredictedPrice: dec("50000"),
		Direction:      dir,
		Stake:          dec(stake),
		ReferencePrice: dec("49000"),
	})
	if err != nil {
		t.Fatalf("submit %s/%s/%s: %v", user, dir, stake, err)
	}

	return p
}

func mustMatch(t *testing.T, s *Service, id uuid.UUID) uuid.UUID {
	t.Helper()

	res, err := s.FindOrCreateMatch(testCtx(t), id)
	if err != nil {
		t.Fatalf("find match: %v", err)
	}
	if !res.Matched || res.BattleID == nil {
		t.Fatalf("expected match for %s, got %+v", id, res)
	}

	return *res.BattleID
}

func predictionStatus(t *testing.T, db *sql.DB, id uuid.UUID) models.PredictionStatus {
	t.Helper()

	var st models.PredictionStatus

	err := db.QueryRow(`SELECT status FROM predictions WHERE id = $1`, id).Scan(&st)
	if err != nil {
		t.Fatalf("read prediction status: %v", err)
	}

	return st
}

// openBattlesFor counts pending or active battles referencing the prediction.
func openBattlesFor(t *testing.T, db *sql.DB, id uuid.UUID) int {
	t.Helper()

	var n int

	err := db.QueryRow(`
		SELECT COUNT(*) FROM battles
		WHERE (prediction_a_id = $1 OR prediction_b_id = $1)
		  AND status IN ('pending_acceptance', 'active')
	`, id).Scan(&n)
	if err != nil {
		t.Fatalf("count battles: %v", err)
	}

	return n
}
