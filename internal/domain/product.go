package domain

// Product categories carried by the GateMesh hardware line.
const (
	CategoryIrrigation     = "irrigation"
	CategoryCropMonitoring = "crop-monitoring"
	CategoryLivestock      = "livestock"
	CategoryInfrastructure = "infrastructure"
	CategoryWeather        = "weather"
	CategoryPower          = "power"
)

// Product represents a catalog entry. Prices are integer minor currency
// units (cents) to avoid floating-point rounding drift.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Category    string            `json:"category"`
	Specs       map[string]string `json:"specs,omitempty"`
	Features    []string          `json:"features,omitempty"`
	Images      []string          `json:"images,omitempty"`
	InStock     bool              `json:"in_stock"`
	Featured    bool              `json:"featured"`
}

// Category describes a product grouping shown on the storefront.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// SubscriptionTier describes a monitoring-plan pricing tier. Prices are in
// cents; AnnualPrice of zero means no annual option.
type SubscriptionTier struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	AnnualPrice int64    `json:"annual_price,omitempty"`
	Interval    string   `json:"interval"`
	Features    []string `json:"features,omitempty"`
	Popular     bool     `json:"popular,omitempty"`
}
