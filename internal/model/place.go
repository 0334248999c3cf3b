package model

// DealSource records which enrichment rule attached a deal to a place.
type DealSource string

const (
	DealSourceBrand    DealSource = "brand"    // store name matched a known brand
	DealSourceCategory DealSource = "category" // category matched a category group
	DealSourcePlace    DealSource = "place"    // fallback reusing the place's own link
)

// Place is the canonical record returned by the nearby-deals endpoint.
// It is built fresh per request from provider data and never persisted.
type Place struct {
	ID            string  `json:"id"`
	StoreName     string  `json:"storeName"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	DistanceMiles float64 `json:"distanceMiles"`
	Category      string  `json:"category"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	URL           string  `json:"url"`

	// Promotional metadata. Static or heuristic, never live-verified.
	ExpiryDate      *string  `json:"expiryDate"`
	PromoCode       string   `json:"promoCode"`
	OriginalPrice   *float64 `json:"originalPrice"`
	DiscountedPrice *float64 `json:"discountedPrice"`

	// Enrichment fields, attached after normalization when a rule matches.
	DealTitle    *string     `json:"dealTitle,omitempty"`
	DealSubtitle *string     `json:"dealSubtitle,omitempty"`
	DealURL      *string     `json:"dealUrl,omitempty"`
	DealSource   *DealSource `json:"dealSource,omitempty"`

	// Commercial-provider extras; null on the open map-data path.
	ImageURL         *string  `json:"imageUrl"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"userRatingsTotal"`

	// IsDealCandidate marks commercial venues during filtering.
	// Never serialized.
	IsDealCandidate bool `json:"-"`
}
