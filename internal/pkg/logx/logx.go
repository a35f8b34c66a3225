/*
Package logx wraps zerolog and owns the process-wide logger configuration.

It initializes the global logger once at startup (console output at Debug level in
development, JSON at Info level otherwise) and exposes small level helpers so call
sites can log key-value fields without touching zerolog directly.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog instance. In development mode the output is
// a colored console writer at Debug level; in production it is plain JSON at Info
// level. All records carry a timestamp and the caller location.
func Init(development bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if development {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger. Components derive their own loggers
// from it with With().Str("component", ...).
func Logger() *zerolog.Logger {
	return &log.Logger
}

// evenFields drops the field list when it is not made of key-value pairs, which
// would otherwise make zerolog panic.
func evenFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Str("log_level", level).
			Int("fields_count", len(fields)).
			Msg("logx helper called with an odd number of fields; fields dropped")
		return nil
	}
	return fields
}

// Info logs msg at Info level with optional key-value fields.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(evenFields("info", fields)).CallerSkipFrame(1).Msg(msg)
}

// Warn logs msg at Warn level with optional key-value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(evenFields("warn", fields)).CallerSkipFrame(1).Msg(msg)
}

// Error logs err and msg at Error level with optional key-value fields.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(evenFields("error", fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal logs err and msg at Fatal level and terminates the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(evenFields("fatal", fields)).CallerSkipFrame(1).Msg(msg)
}
