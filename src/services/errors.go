package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/processors"
)

var (
	ErrParsingFailed    = errors.New("failed to parse uploaded file")
	ErrProcessingFailed = errors.New("failed to reconcile data")
	ErrNoData           = errors.New("no financial data loaded")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrUnknownKind      = errors.New("unknown entity kind")

	// ErrMissingPrerequisite is returned when orders or inventory arrive without an ads file.
	ErrMissingPrerequisite = processors.ErrMissingPrerequisite
)

// ParseEntityKind maps a query value to a kind. Empty means creator.
func ParseEntityKind(s string) (models.EntityKind, error) {
	switch models.EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", models.KindCreator:
		return models.KindCreator, nil
	case models.KindProduct:
		return models.KindProduct, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
