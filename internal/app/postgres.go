package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-todo-web/internal/config"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

var globalPostgresPool *pgxpool.Pool

func mustConnectPostgres() {
	cfg := config.Global().Postgres

	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	err = services.EnsureTaskSchema(ctx, globalPostgresPool)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ensure task schema")
		panic(err)
	}
	globalLogger.Info().Msg("ensured task schema")
}

func disconnectPostgres() {
	if globalPostgresPool == nil {
		return
	}
	globalPostgresPool.Close()
	globalLogger.Info().Msg("disconnected from postgres")
}
