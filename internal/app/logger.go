package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-web/internal/config"
)

var globalLogger zerolog.Logger

func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"
	zerolog.DurationFieldUnit = time.Millisecond

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	switch cfg.Env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}

	if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("log_level", cfg.LogLevel).
				Msg("unknown log level")
			panic(err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(w)
	globalLogger.Info().
		Str("level", level.String()).
		Msg("initialized application logger")
}
