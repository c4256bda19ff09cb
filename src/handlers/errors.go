package handlers

import (
	"errors"
	"net/http"

	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers"
	"github.com/LinhLe223/GMV-MAX/src/services"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// sendServiceError maps service and parser errors to a status. Messages of
// client errors are returned as is since they name the offending file or field.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, parsers.ErrMalformedFile),
		errors.Is(err, parsers.ErrUnknownFileKind),
		errors.Is(err, services.ErrParsingFailed),
		errors.Is(err, services.ErrUnknownKind),
		errors.Is(err, models.ErrInvalidCostStructure):
		log.Warn("Request rejected", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrMissingPrerequisite):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNoData), errors.Is(err, services.ErrEntityNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	default:
		log.Error("Internal error", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}
