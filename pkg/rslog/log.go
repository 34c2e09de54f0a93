// Package rslog provides request-scoped logging for the RideShare service.
package rslog

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/muyo/sno"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type logPtr struct{}

// statusWriter remembers the response code so the access log can report it
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// MakeLogMiddleware tags every request with a unique ID, stores a matching
// logger in the request context and writes one access log line per request.
func MakeLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		logger := log.With().Str("req", sno.New(0).String()).Logger()
		ctx := context.WithValue(r.Context(), logPtr{}, &logger)

		recorder := &statusWriter{ResponseWriter: rw, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("took", time.Since(start)).
			Msg("request served")
	})
}

// Log returns the logger for the given context. Inside a request this is the
// request's logger (carrying its ID); everywhere else the global one.
func Log(ctx context.Context) *zerolog.Logger {
	logger := ctx.Value(logPtr{})
	if logger == nil {
		return &log.Logger
	}

	return logger.(*zerolog.Logger)
}

// PgxLogger forwards pgx's query logging to the request's logger
type PgxLogger struct{}

func (PgxLogger) Log(ctx context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	Log(ctx).WithLevel(pgxLevel(level)).Str("module", "pgx").Fields(data).Msg(msg)
}

func pgxLevel(level pgx.LogLevel) zerolog.Level {
	switch level {
	case pgx.LogLevelNone:
		return zerolog.NoLevel
	case pgx.LogLevelError:
		return zerolog.ErrorLevel
	case pgx.LogLevelWarn:
		return zerolog.WarnLevel
	case pgx.LogLevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
