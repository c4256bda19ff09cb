package models

type EntityKind string

const (
	KindCreator EntityKind = "creator"
	KindProduct EntityKind = "product"
)

type HealthStatus string

const (
	HealthBleeding HealthStatus = "BLEEDING"
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthNeutral  HealthStatus = "NEUTRAL"
)

type Command string

const (
	CommandScale          Command = "SCALE"
	CommandOptimize       Command = "OPTIMIZE"
	CommandKill           Command = "KILL"
	CommandMaintain       Command = "MAINTAIN"
	CommandInventoryAlert Command = "INVENTORY_ALERT"
	CommandStockOut       Command = "STOCK_OUT"
)

// Quadrant is the BCG label of an entity relative to its population.
type Quadrant string

const (
	QuadrantStar     Quadrant = "STAR"
	QuadrantCow      Quadrant = "COW"
	QuadrantQuestion Quadrant = "QUESTION"
	QuadrantDog      Quadrant = "DOG"
)

// UnknownStock marks a product whose inventory item could not be found.
const UnknownStock = -1

// ReconciledEntity is the P&L record of one creator or one product.
type ReconciledEntity struct {
	Kind      EntityKind `json:"kind"`
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	ProductID string     `json:"productId,omitempty"`
	SKU       string     `json:"sku,omitempty"`

	AdsCost float64 `json:"adsCost"`
	AdsGmv  float64 `json:"adsGmv"`
	HasAds  bool    `json:"hasAds"`

	TotalGmv        float64      `json:"totalGmv"`
	Nmv             float64      `json:"nmv"`
	TotalCommission float64      `json:"totalCommission"`
	TotalCogs       float64      `json:"totalCogs"`
	GrossProfit     float64      `json:"grossProfit"`
	Fees            FeeBreakdown `json:"fees"`
	NetProfit       float64      `json:"netProfit"`

	TotalOrders         int     `json:"totalOrders"`
	SuccessOrders       int     `json:"successOrders"`
	FailedOrders        int     `json:"failedOrders"`
	ReturnCancelPercent float64 `json:"returnCancelPercent"`
	CogsFoundCount      int     `json:"cogsFoundCount"`

	RealRoas           float64 `json:"realRoas"`
	BreakEvenRoas      float64 `json:"breakEvenRoas"`
	BreakEvenUnbounded bool    `json:"breakEvenUnbounded"`

	StockQuantity     int     `json:"stockQuantity"`
	SoldQuantity      int     `json:"soldQuantity"`
	DaysOnHand        float64 `json:"daysOnHand"`
	DaysOnHandDisplay string  `json:"daysOnHandDisplay"`
	DaysUnbounded     bool    `json:"daysUnbounded"`
	OutOfStock        bool    `json:"outOfStock"`

	LatestVideoLink string `json:"latestVideoLink,omitempty"`

	HealthStatus HealthStatus `json:"healthStatus"`
	Command      Command      `json:"command"`
	Bcg          Quadrant     `json:"bcg,omitempty"`
}
