package domain

import "sort"

// BusinessSnapshot is the immutable aggregate computed once from a
// PlaceCatalog for one Region.
type BusinessSnapshot struct {
	Total                int            `json:"total_businesses"`
	AreaKm2              float64        `json:"area_km2"`
	Density              float64        `json:"business_density"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	PriceDistribution    map[string]int `json:"price_distribution"`
	AverageRating        float64        `json:"average_rating"`
	TopBusinesses        []PlaceRecord  `json:"top_businesses"`
	Points               []GeoPoint     `json:"coordinates"`
}

// LabelCount is one histogram bucket.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Categories returns the category histogram sorted by count desc, then label.
func (s *BusinessSnapshot) Categories() []LabelCount {
	return sortedCounts(s.CategoryDistribution)
}

// Prices returns the price histogram sorted by count desc, then label.
func (s *BusinessSnapshot) Prices() []LabelCount {
	return sortedCounts(s.PriceDistribution)
}

func sortedCounts(m map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(m))
	for k, v := range m {
		out = append(out, LabelCount{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
