package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	General   string            `json:"general,omitempty"`
	Field     string            `json:"field,omitempty"`
	Conflicts []apperr.Ref      `json:"conflicts,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already out; an encoding failure can only
		// truncate the body.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// writeError maps a service error to its status code. Unclassified errors
// are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		verr *apperr.ValidationError
		cerr *apperr.ConflictError
		nerr *apperr.NotFoundError
		uerr *apperr.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Fields, General: verr.General})
	case errors.As(err, &cerr):
		jsonResponse(w, http.StatusConflict, errorBody{Error: cerr.Error(), Field: cerr.Field, Conflicts: cerr.Conflicts})
	case errors.As(err, &nerr):
		jsonError(w, http.StatusNotFound, nerr.Error())
	case errors.As(err, &uerr):
		requestLogger(r, log).Warn("upstream failure", zap.Error(err))
		jsonResponse(w, http.StatusBadGateway, errorBody{Error: "storage failure", General: uerr.Error()})
	default:
		requestLogger(r, log).Error("request failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target. A
// malformed body is reported as a validation error.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return &apperr.ValidationError{General: "request body is empty"}
		}
		return &apperr.ValidationError{General: "invalid request body"}
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "invalid id")
	}
	return id, nil
}

// queryInt parses an optional numeric query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, apperr.Invalid(name, name+" must be a non-negative number")
	}
	return n, nil
}
