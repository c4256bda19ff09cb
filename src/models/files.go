package models

// FileKind identifies which of the three exports a spreadsheet is.
type FileKind string

const (
	FileAds       FileKind = "ads"
	FileOrders    FileKind = "orders"
	FileInventory FileKind = "inventory"
)

// AllFileKinds lists the kinds in pipeline order.
var AllFileKinds = []FileKind{FileAds, FileOrders, FileInventory}

// ParsedFile is the typed result of one spreadsheet. Only the slice matching Kind is populated.
type ParsedFile struct {
	Kind           FileKind          `json:"kind"`
	FileName       string            `json:"fileName"`
	HeaderRow      int               `json:"headerRow"`
	RowCount       int               `json:"rowCount"`
	UnmappedFields []string          `json:"unmappedFields"`
	Ads            []AdRecord        `json:"-"`
	Orders         []OrderRecord     `json:"-"`
	Inventory      []InventoryRecord `json:"-"`
}
