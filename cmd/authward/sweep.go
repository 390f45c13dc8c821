package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/authward/authward/store"
	"github.com/authward/authward/store/postgres"
	redisstore "github.com/authward/authward/store/redis"
)

type sweepConfig struct {
	interval    time.Duration
	once        bool
	redisPrefix string
}

func newSweepCmd() *cobra.Command {
	cfg := &sweepConfig{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Purge expired refresh token records",
		Long: `Periodically delete refresh token records whose expiry has passed.

The token store is selected by environment: REDIS_ADDR for the Redis
backend, DATABASE_URL for PostgreSQL. Exactly one must be set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.interval, "interval", time.Hour, "time between sweeps")
	cmd.Flags().BoolVar(&cfg.once, "once", false, "run a single sweep and exit")
	cmd.Flags().StringVar(&cfg.redisPrefix, "redis-prefix", "aw", "key prefix for the Redis backend")

	return cmd
}

func runSweep(cmd *cobra.Command, cfg *sweepConfig) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	st, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("sweeper started", "backend", backend, "interval", cfg.interval.String(), "once", cfg.once)

	sweep := func() {
		n, err := st.PurgeExpired(ctx, time.Now())
		if err != nil {
			logger.Error("sweep failed", "error", err)
			return
		}
		logger.Info("sweep completed", "deleted", n)
	}

	sweep()
	if cfg.once {
		return nil
	}

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			logger.Info("sweeper stopping")
			return nil
		}
	}
}

func openStore(cfg *sweepConfig) (store.TokenStore, string, error) {
	redisAddr := os.Getenv("REDIS_ADDR")
	databaseURL := os.Getenv("DATABASE_URL")

	switch {
	case redisAddr != "" && databaseURL != "":
		return nil, "", errors.New("set exactly one of REDIS_ADDR and DATABASE_URL, not both")
	case redisAddr != "":
		rdb := goredis.NewClient(&goredis.Options{Addr: redisAddr})
		return redisstore.NewStore(rdb, cfg.redisPrefix), "redis", nil
	case databaseURL != "":
		st, err := postgres.Open(context.Background(), databaseURL)
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil
	default:
		return nil, "", errors.New("REDIS_ADDR or DATABASE_URL environment variable is required")
	}
}
