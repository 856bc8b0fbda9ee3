package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a configured zerolog.Logger. In development it writes through a
// console writer at debug level; elsewhere it emits JSON at info level. A
// non-empty level (debug, info, warn, error) overrides the environment default.
func New(appEnv, level string) zerolog.Logger {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	isDev := env == "development" || env == "dev"

	lvl := zerolog.InfoLevel
	if isDev {
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.TrimSpace(level)); err == nil && level != "" {
		lvl = parsed
	}

	var out io.Writer = os.Stdout
	if isDev {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stdout
			w.TimeFormat = "2006-01-02 15:04:05"
		})
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "courier").Logger()
}

// Nop returns a disabled logger, useful for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
