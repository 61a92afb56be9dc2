package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
)

const maxJSONBody = 2 << 20 // 2MB

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeMessage sends {"message": message}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
}

// pathID parses the named path value as a positive id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// writeError maps a service error to a status code. Validation messages are
// returned as is; store failures are logged and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": fe.Message, "field": fe.Field})
	case errors.Is(err, domain.ErrInvalidField):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateKey):
		writeMessage(w, http.StatusBadRequest, "Already exists.")
	case errors.Is(err, domain.ErrUploadTooLarge):
		writeMessage(w, http.StatusBadRequest, "Image too large. Max 5MB allowed.")
	case errors.Is(err, domain.ErrUploadTypeRejected):
		writeMessage(w, http.StatusBadRequest, "Invalid image type. Only PNG, JPEG, WebP allowed.")
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden.")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, "Order is not in a state that allows this action.")
	default:
		logger.From(r.Context()).Error(op, "error", err)
		writeMessage(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
