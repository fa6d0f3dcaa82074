package transport

import (
	"net/http"

	"catalog/internal/middleware"

	"go.uber.org/zap"
)

// respondDecodeError answers a body that failed decoding or validation.
func respondDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if middleware.IsValidationError(err) {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}
