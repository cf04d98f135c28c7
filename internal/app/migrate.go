package app

import (
	"context"
	_ "embed"

	"github.com/adanyl0v/swifttrack/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// MustMigratePostgres applies the schema. Every statement is idempotent,
// so it is safe to run on each deploy.
func MustMigratePostgres() {
	ctx, cancel := context.WithTimeout(context.Background(), config.Global().Postgres.ConnectTimeout)
	defer cancel()

	_, err := globalPostgresPool.Exec(ctx, schemaSQL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to apply postgres schema")
		panic(err)
	}
	globalLogger.Info().Msg("applied postgres schema")
}
