package models

// OrganicCreator is the display name for orders carrying no creator handle.
const OrganicCreator = "Organic/Khác"

// OrderRecord is one line of the commerce orders export.
type OrderRecord struct {
	OrderID      string  `json:"orderId"`
	KocUsername  string  `json:"kocUsername"`
	SellerSKU    string  `json:"sellerSku"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	VideoID      string  `json:"videoId"`
	Revenue      float64 `json:"revenue"`
	Status       string  `json:"status"`
	ReturnStatus string  `json:"returnStatus"`
	Commission   float64 `json:"commission"`
	Quantity     int     `json:"quantity"`
}

// Creator returns the handle used for attribution, falling back to the organic bucket.
func (o OrderRecord) Creator() string {
	if o.KocUsername == "" {
		return OrganicCreator
	}
	return o.KocUsername
}

// Qty returns the line quantity, never less than one.
func (o OrderRecord) Qty() int {
	if o.Quantity <= 0 {
		return 1
	}
	return o.Quantity
}
