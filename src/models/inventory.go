package models

// InventoryRecord is one SKU of the inventory export.
type InventoryRecord struct {
	SKU   string  `json:"sku"`
	Stock int     `json:"stock"`
	Cogs  float64 `json:"cogs"`
	Name  string  `json:"name"`
}
