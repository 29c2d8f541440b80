package obs

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
	setLogger(os.Stdout, zerolog.InfoLevel)
}

func setLogger(w io.Writer, level zerolog.Level) {
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	logger.Store(&l)
}

// Logger returns the shared structured logger used across the service.
func Logger() *zerolog.Logger {
	return logger.Load()
}

// SetOutput redirects the shared logger, keeping its level. The returned
// func restores the previous logger.
func SetOutput(w io.Writer) (restore func()) {
	prev := logger.Load()
	setLogger(w, prev.GetLevel())
	return func() { logger.Store(prev) }
}

// SetLevel parses level ("debug", "info", "warn", ...) and applies it.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l := logger.Load().Level(lvl)
	logger.Store(&l)
	return nil
}
