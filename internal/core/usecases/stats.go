package usecases

import (
	"math"
	"sort"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// TopBusinessLimit caps BusinessSnapshot.TopBusinesses.
const TopBusinessLimit = 10

// Aggregate computes the BusinessSnapshot for a catalog built over region.
// It is pure: the same catalog contents and region always yield the same
// snapshot.
func Aggregate(catalog *domain.PlaceCatalog, region domain.Region) domain.BusinessSnapshot {
	records := catalog.Records()
	area := region.AreaKm2()

	snap := domain.BusinessSnapshot{
		Total:                len(records),
		AreaKm2:              area,
		CategoryDistribution: make(map[string]int),
		PriceDistribution:    make(map[string]int),
		TopBusinesses:        []domain.PlaceRecord{},
		Points:               make([]domain.GeoPoint, 0, len(records)),
	}
	if area > 0 {
		snap.Density = float64(len(records)) / area
	}

	var ratingSum float64
	var rated int
	for _, r := range records {
		snap.CategoryDistribution[r.Category]++
		if r.PriceLevel != nil {
			if label, ok := domain.PriceLabel(*r.PriceLevel); ok {
				snap.PriceDistribution[label]++
			}
		}
		if r.Rating != nil {
			ratingSum += *r.Rating
			rated++
		}
		snap.Points = append(snap.Points, r.Location)
	}
	if rated > 0 {
		snap.AverageRating = ratingSum / float64(rated)
	}

	snap.TopBusinesses = topBusinesses(records, TopBusinessLimit)
	return snap
}

type scored struct {
	rec   domain.PlaceRecord
	score float64
}

// topBusinesses ranks places by rating·ln(ratingCount), ties broken by ID.
// Places without a rating or with no reviews are not ranked.
func topBusinesses(records []domain.PlaceRecord, n int) []domain.PlaceRecord {
	candidates := make([]scored, 0, len(records))
	for _, r := range records {
		if r.Rating == nil || r.RatingCount == nil || *r.RatingCount <= 0 {
			continue
		}
		candidates = append(candidates, scored{
			rec:   r,
			score: *r.Rating * math.Log(float64(*r.RatingCount)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rec.ID < candidates[j].rec.ID
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]domain.PlaceRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.rec
	}
	return out
}
