package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key under which the request ID travels.
const RequestIDKey contextKey = "request_id"

// RequestID tags every request with an identifier that is echoed in the
// X-Request-ID response header and stamped on the request log line, so a
// failed save reported by a register user can be matched to the exact
// gateway exchange behind it. A client-supplied X-Request-ID is kept as is.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	})
}

// newRequestID mints a UUID v7 so IDs sort in creation order in the log.
// The v7 constructor can fail if the entropy source does, in which case a
// random v4 is close enough.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// GetRequestID returns the request's ID, or "" outside a RequestID-wrapped
// request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
