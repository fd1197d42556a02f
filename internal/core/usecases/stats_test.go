package usecases_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

func catalogOf(records ...domain.PlaceRecord) *domain.PlaceCatalog {
	c := domain.NewPlaceCatalog()
	for _, r := range records {
		c.Insert(r)
	}
	return c
}

func TestAggregate_Basic(t *testing.T) {
	region := nycRegion()
	c := catalogOf(
		domain.PlaceRecord{ID: "1", Category: "Restaurant", Rating: ptrF(4.0), RatingCount: ptrI(100), PriceLevel: ptrI(2)},
		domain.PlaceRecord{ID: "2", Category: "Restaurant", Rating: ptrF(5.0), RatingCount: ptrI(3), PriceLevel: ptrI(2)},
		domain.PlaceRecord{ID: "3", Category: "Cafe", PriceLevel: ptrI(1)},
		domain.PlaceRecord{ID: "4", Category: "Other", Rating: ptrF(3.0), PriceLevel: ptrI(9)},
	)

	snap := usecases.Aggregate(c, region)

	assert.Equal(t, 4, snap.Total)
	assert.InDelta(t, 4/region.AreaKm2(), snap.Density, 1e-9)
	assert.Equal(t, map[string]int{"Restaurant": 2, "Cafe": 1, "Other": 1}, snap.CategoryDistribution)
	assert.Equal(t, map[string]int{"Moderate": 2, "Inexpensive": 1}, snap.PriceDistribution)
	assert.InDelta(t, 4.0, snap.AverageRating, 1e-9)
	assert.Len(t, snap.Points, 4)

	// 4.0·ln(100) ≈ 18.4 beats 5.0·ln(3) ≈ 5.5; "4" has no count and is not ranked
	require.Len(t, snap.TopBusinesses, 2)
	assert.Equal(t, "1", snap.TopBusinesses[0].ID)
	assert.Equal(t, "2", snap.TopBusinesses[1].ID)
}

func TestAggregate_ZeroArea(t *testing.T) {
	region := domain.Region{North: 40.7, South: 40.7, East: -74, West: -74}
	snap := usecases.Aggregate(catalogOf(domain.PlaceRecord{ID: "1"}), region)
	assert.Equal(t, 1, snap.Total)
	assert.Zero(t, snap.Density)
	assert.False(t, math.IsNaN(snap.Density))
	assert.False(t, math.IsInf(snap.Density, 0))
}

func TestAggregate_Empty(t *testing.T) {
	snap := usecases.Aggregate(domain.NewPlaceCatalog(), nycRegion())
	assert.Zero(t, snap.Total)
	assert.Zero(t, snap.AverageRating)
	assert.NotNil(t, snap.CategoryDistribution)
	assert.NotNil(t, snap.TopBusinesses)
	assert.Empty(t, snap.TopBusinesses)
}

func TestAggregate_TopTenWithTieBreak(t *testing.T) {
	var records []domain.PlaceRecord
	// 12 places with identical scores; ids inserted in reverse order
	for i := 11; i >= 0; i-- {
		records = append(records, domain.PlaceRecord{
			ID:          string(rune('a' + i)),
			Rating:      ptrF(4.5),
			RatingCount: ptrI(50),
		})
	}
	snap := usecases.Aggregate(catalogOf(records...), nycRegion())

	require.Len(t, snap.TopBusinesses, usecases.TopBusinessLimit)
	for i, r := range snap.TopBusinesses {
		assert.Equal(t, string(rune('a'+i)), r.ID)
	}
}

func TestAggregate_SingleReviewScoresZero(t *testing.T) {
	c := catalogOf(
		domain.PlaceRecord{ID: "solo", Rating: ptrF(5.0), RatingCount: ptrI(1)},
		domain.PlaceRecord{ID: "busy", Rating: ptrF(2.0), RatingCount: ptrI(10)},
	)
	snap := usecases.Aggregate(c, nycRegion())
	require.Len(t, snap.TopBusinesses, 2)
	assert.Equal(t, "busy", snap.TopBusinesses[0].ID)
}

func TestAggregate_Deterministic(t *testing.T) {
	c := catalogOf(
		domain.PlaceRecord{ID: "b", Category: "Cafe", Rating: ptrF(4.2), RatingCount: ptrI(12), PriceLevel: ptrI(0)},
		domain.PlaceRecord{ID: "a", Category: "Retail", Rating: ptrF(4.2), RatingCount: ptrI(12), PriceLevel: ptrI(4)},
	)
	first := usecases.Aggregate(c, nycRegion())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, usecases.Aggregate(c, nycRegion()))
	}
	assert.Equal(t, "a", first.TopBusinesses[0].ID)
	assert.Equal(t, map[string]int{"Free": 1, "Very Expensive": 1}, first.PriceDistribution)
}

func TestAggregate_TopNRanking(t *testing.T) {
	// A: 4.0·ln(100) ≈ 18.42, B: 4.5·ln(10) ≈ 10.36, C: 3.0·ln(1000) ≈ 20.72
	c := catalogOf(
		domain.PlaceRecord{ID: "A", Rating: ptrF(4.0), RatingCount: ptrI(100)},
		domain.PlaceRecord{ID: "B", Rating: ptrF(4.5), RatingCount: ptrI(10)},
		domain.PlaceRecord{ID: "C", Rating: ptrF(3.0), RatingCount: ptrI(1000)},
	)

	for run := 0; run < 5; run++ {
		snap := usecases.Aggregate(c, nycRegion())
		ids := make([]string, 0, len(snap.TopBusinesses))
		for _, r := range snap.TopBusinesses {
			ids = append(ids, r.ID)
		}
		require.Equal(t, []string{"C", "A", "B"}, ids, "run %d", run)
	}
}
