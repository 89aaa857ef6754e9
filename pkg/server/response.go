package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/scgraph/pkg/errors"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Error   string      `json:"error"`
	Missing []uint64    `json:"missing,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusOf(code)
	body := errorBody{Code: code, Error: errors.UserMessage(err)}

	var unresolved *errors.UnresolvedError
	if errors.As(err, &unresolved) {
		body.Missing = unresolved.Addrs
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondJSON(w, status, body)
}

func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTopology, errors.ErrCodeEmptyGeometry:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
