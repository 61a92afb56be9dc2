// Package logger builds the process slog.Logger and carries a request-scoped
// logger through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// New returns a logger writing text, JSON or both. With "both", text goes to
// out and JSON to errOut.
func New(out, errOut io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts))
	case "both":
		return slog.New(slog.NewMultiHandler(
			slog.NewTextHandler(out, opts),
			slog.NewJSONHandler(errOut, opts),
		))
	default:
		return slog.New(slog.NewTextHandler(out, opts))
	}
}

type ctxKey struct{}

type requestIDKey struct{}

// With stores l in ctx.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger stored in ctx, or slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// RequestID returns the id assigned by Middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Middleware assigns every request an id (reusing an incoming X-Request-ID)
// and stores a logger tagged with it in the request context.
func Middleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			ctx = With(ctx, base.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
