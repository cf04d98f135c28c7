package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/config"
)

const serviceName = "swifttrack"

var globalLogger zerolog.Logger

// InitDefaultLogger sets up a JSON logger usable before the config is read.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	level, w, err := loggerForEnv(cfg.Env)
	if err != nil {
		globalLogger.Error().
			Str("env", cfg.Env).
			Msg("unknown env")
		panic(err)
	}

	if cfg.LogLevel != "" {
		// Validated by the config reader.
		level, _ = zerolog.ParseLevel(cfg.LogLevel)
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(w)
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("level", level.String()).
		Msg("initialized application logger")
}

func loggerForEnv(env string) (zerolog.Level, io.Writer, error) {
	switch env {
	case config.EnvDev:
		return zerolog.DebugLevel, os.Stdout, nil
	case config.EnvProd:
		return zerolog.InfoLevel, os.Stdout, nil
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		return zerolog.TraceLevel, consoleWriter, nil
	default:
		return zerolog.NoLevel, nil, fmt.Errorf("unknown env: %s", env)
	}
}
