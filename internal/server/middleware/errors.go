package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/logbookhq/logbook/internal/model"
)

// writeErrorEnvelope emits the same {"error":{code,kind,message}} envelope
// the handlers produce, so a rejection in the middleware chain is
// indistinguishable on the wire from one issued deeper in.
func writeErrorEnvelope(w http.ResponseWriter, status int, kind model.ErrorKind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    status,
			Kind:    kind.String(),
			Message: message,
		},
	})
}
