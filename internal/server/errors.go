package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/unshred/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInputLoad:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg, Hint: errors.HintOf(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
