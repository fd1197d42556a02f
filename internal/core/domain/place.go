package domain

// PlaceSummary is one hit from a provider's nearby search, before details
// are fetched.
type PlaceSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Types    []string `json:"types,omitempty"`
	Location GeoPoint `json:"location"`
}

// PlaceRecord is a normalized business returned by a places provider.
// Identity is the provider identifier.
type PlaceRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Types        []string `json:"types,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingCount  *int     `json:"rating_count,omitempty"`
	Location     GeoPoint `json:"location"`
	PriceLevel   *int     `json:"price_level,omitempty"`
	Address      string   `json:"address,omitempty"`
	Status       string   `json:"status,omitempty"`
	Website      string   `json:"website,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
}

// priceLabels maps price tiers 0-4 to display labels.
var priceLabels = [...]string{"Free", "Inexpensive", "Moderate", "Expensive", "Very Expensive"}

// PriceLabel returns the label for a price tier, or false if out of range.
func PriceLabel(level int) (string, bool) {
	if level < 0 || level >= len(priceLabels) {
		return "", false
	}
	return priceLabels[level], true
}
