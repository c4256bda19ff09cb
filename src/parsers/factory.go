package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/ads"
	"github.com/LinhLe223/GMV-MAX/src/parsers/inventory"
	"github.com/LinhLe223/GMV-MAX/src/parsers/orders"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

var errUnknownFileKind = errors.New("unknown file kind")

func GetParser(kind models.FileKind, scanRows int) (Parser, error) {
	switch kind {
	case models.FileAds:
		return ads.NewParser(scanRows), nil
	case models.FileOrders:
		return orders.NewParser(scanRows), nil
	case models.FileInventory:
		return inventory.NewParser(scanRows), nil
	default:
		return nil, fmt.Errorf("%w: no parser available for %q", errUnknownFileKind, kind)
	}
}

var (
	ordersMarker    = utils.NormalizeName(orders.FileMarker)
	inventoryMarker = utils.NormalizeName(inventory.FileMarker)
)

// DetectFileKind applies the export naming convention: orders and inventory
// files carry a fixed token in their name. It returns false when neither is present.
func DetectFileKind(fileName string) (models.FileKind, bool) {
	name := utils.NormalizeName(fileName)
	switch {
	case strings.Contains(name, ordersMarker):
		return models.FileOrders, true
	case strings.Contains(name, inventoryMarker):
		return models.FileInventory, true
	default:
		return "", false
	}
}

// ResolveFileKind picks the kind from the file name, then the declared kind, and defaults to ads.
func ResolveFileKind(fileName string, declared string) (models.FileKind, error) {
	if kind, ok := DetectFileKind(fileName); ok {
		return kind, nil
	}
	switch models.FileKind(strings.ToLower(strings.TrimSpace(declared))) {
	case models.FileAds, "":
		return models.FileAds, nil
	case models.FileOrders:
		return models.FileOrders, nil
	case models.FileInventory:
		return models.FileInventory, nil
	default:
		return "", fmt.Errorf("%w: %q for file %q", errUnknownFileKind, declared, fileName)
	}
}
