package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseDeckID extracts and validates the deck ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false after
// writing an error response.
// Expects path parameter: id
func ParseDeckID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Debug("Invalid deck ID in path", zap.String("id", raw), zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid deck ID format")
		return uuid.Nil, false
	}
	return id, true
}
