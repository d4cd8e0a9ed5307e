package arena

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
	pgbattles "github.com/fastprodman/battlearena/internal/repos/battles/postgres"
	"github.com/fastprodman/battlearena/internal/repos/invitations"
	pginvitations "github.com/fastprodman/battlearena/internal/repos/invitations/postgres"
	"github.com/fastprodman/battlearena/internal/repos/predictions"
	pgpredictions "github.com/fastprodman/battlearena/internal/repos/predictions/postgres"
)

const defaultClaimAttempts = 3

// Service is the matchmaking and battle lifecycle engine. All multi-row
// mutations run inside a single Postgres transaction.
type Service struct {
	db          *sql.DB
	predictions predictions.Predictions
	battles     battles.Battles
	invitations invitations.Invitations
	publisher   Publisher

	now           func() time.Time
	claimAttempts int
}

type Option func(*Service)

// WithClock overrides the time source used for created/accepted/activated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClaimAttempts bounds how many times the matchmaker re-runs its search
// after losing a candidate to a concurrent matcher.
func WithClaimAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.claimAttempts = n
		}
	}
}

func New(dbx *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:            dbx,
		predictions:   pgpredictions.New(dbx),
		battles:       pgbattles.New(dbx),
		invitations:   pginvitations.New(dbx),
		publisher:     NopPublisher{},
		now:           time.Now,
		claimAttempts: defaultClaimAttempts,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// timestamp returns the current time at the precision Postgres stores.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// publish runs after commit; a failed publish never undoes the transition.
func (s *Service) publish(ctx context.Context, events ...models.BattleEvent) {
	for _, ev := range events {
		err := s.publisher.Publish(ctx, ev)
		if err != nil {
			slog.Warn("publish battle event",
				"type", ev.Type,
				"battle_id", ev.BattleID,
				"error", err,
			)
		}
	}
}
