package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/logbookhq/logbook/internal/model"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a classified error to its HTTP status and writes the
// standard error envelope. The message shown to the caller is the classified
// message only; wrapped causes stay in the server log.
func writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	status := statusForKind(kind)
	writeJSON(w, status, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    status,
			Kind:    kind.String(),
			Message: userMessage(err),
		},
	})
}

// writeBadRequest writes a validation-kind error for malformed requests that
// never reached the service layer.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    http.StatusBadRequest,
			Kind:    model.KindValidation.String(),
			Message: message,
		},
	})
}

// statusForKind is the single place the error taxonomy meets HTTP. Service
// failures map to 422: the gateway accepted the request shape but refused
// the operation.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindService:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// userMessage extracts the classified message from err, falling back to a
// generic line for unclassified failures so internals never leak.
func userMessage(err error) string {
	var e *model.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "The logbook service was unreachable. Try again shortly."
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
