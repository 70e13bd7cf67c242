package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/logbookhq/logbook/internal/model"
)

// RateLimit caps requests per IP per minute across the whole API, sliding
// window. The spreadsheet gateway is slow and quota-bound, so runaway
// clients are cut off before their traffic reaches it.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}

// LoginRateLimit returns a stricter per-IP limiter for the login endpoint.
// The gateway does no throttling of its own, so credential guessing has to
// be slowed down here.
func LoginRateLimit(attemptsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		attemptsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErrorEnvelope(w, http.StatusTooManyRequests, model.KindAuth,
				"Too many login attempts, try again later")
		}),
	)
}
