// Package httpserver exposes the evaluation and report engine over a JSON
// REST API. Handlers translate transport concerns into usecase calls and
// map the domain error taxonomy onto HTTP status codes.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto status codes. Remote-service and
// encoding failures only reach here when every fallback was exhausted, so
// they surface as 503.
func writeError(w http.ResponseWriter, _ *http.Request, err error, details any) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, domain.ErrTranscription):
		status = http.StatusUnprocessableEntity
		code = "TRANSCRIPTION_FAILED"
	case errors.Is(err, domain.ErrSchemaInvalid):
		status = http.StatusServiceUnavailable
		code = "SCHEMA_INVALID"
	case errors.Is(err, domain.ErrRemoteService):
		status = http.StatusServiceUnavailable
		code = "REMOTE_SERVICE"
	case errors.Is(err, domain.ErrEncoding):
		status = http.StatusServiceUnavailable
		code = "EVALUATION_UNAVAILABLE"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error(), Details: details}})
}
