package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/battlearena/internal/api"
	"github.com/fastprodman/battlearena/internal/infra/logging"
	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/infra/redisbus"
	"github.com/fastprodman/battlearena/internal/oracle"
	"github.com/fastprodman/battlearena/internal/services/arena"
	"github.com/fastprodman/battlearena/pkg/envconf"
	"github.com/fastprodman/battlearena/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	err := envconf.Dotenv(".env")
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.AddNamed("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	var publisher arena.Publisher = arena.NopPublisher{}

	if cfg.Redis.Addr != "" {
		bus, rerr := redisbus.New(ctx, cfg.Redis)
		if rerr != nil {
			return fmt.Errorf("connect redis: %w", rerr)
		}

		shutdownqueue.AddNamed("redis", func(context.Context) error {
			return bus.Close()
		})

		publisher = bus
	} else {
		slog.Info("REDIS_ADDR not set, battle events are not published")
	}

	engine := arena.New(dbConns,
		arena.WithPublisher(publisher),
		arena.WithClaimAttempts(cfg.Match.ClaimAttempts),
	)

	prices := oracle.New(cfg.Oracle)

	// --- HTTP server ---
	handler := api.NewRouter(
		api.NewHandler(engine, prices, cfg.Match.AutoMatch),
		api.AcceptAllVerifier{},
	)
	srv := api.NewServer(cfg.Port, handler)

	// Registered last so it runs first: stop taking requests before closing infra.
	shutdownqueue.AddNamed("http server", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "auto_match", cfg.Match.AutoMatch)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
