package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/logbookhq/logbook/internal/session"
)

// principal is a holder the Logger plants in the context before the auth
// middleware runs. Authenticate resolves the session further down the chain,
// in a derived context the Logger never sees, so it reports the identity back
// through this pointer instead.
type principal struct {
	username string
	role     string
}

const principalKey contextKey = "log_principal"

// markPrincipal records the session identity for the request log line. A nop
// when the request did not pass through Logger.
func markPrincipal(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if who, ok := ctx.Value(principalKey).(*principal); ok {
		who.username = sess.Username
		who.role = string(sess.Role)
	}
}

// Logger returns middleware that writes one structured log line per request:
// method, path, status, duration, response size, request ID, remote address,
// and the session user when one was resolved (anonymous search traffic has
// none). Gateway failures surface as 5xx here, so those lines log at error
// and rejected credentials at warn.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			who := &principal{}
			r = r.WithContext(context.WithValue(r.Context(), principalKey, who))
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"bytes", rec.bytes,
				"request_id", GetRequestID(r.Context()),
				"remote_addr", r.RemoteAddr,
			}
			if who.username != "" {
				attrs = append(attrs, "user", who.username, "role", who.role)
			}
			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}

// statusRecorder captures the status code and byte count a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap exposes the wrapped writer so chi's Flusher and Hijacker assertions
// keep working through the chain.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
