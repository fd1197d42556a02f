package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/areainsight/internal/core/category"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	assert.Equal(t, category.Retail, category.Classify([]string{"store", "restaurant"}))
	assert.Equal(t, category.Restaurant, category.Classify([]string{"restaurant", "store"}))
}

func TestClassify_SkipsUnknownTags(t *testing.T) {
	tags := []string{"point_of_interest", "establishment", "pharmacy", "store"}
	assert.Equal(t, category.Healthcare, category.Classify(tags))
}

func TestClassify_Other(t *testing.T) {
	assert.Equal(t, category.Other, category.Classify(nil))
	assert.Equal(t, category.Other, category.Classify([]string{"point_of_interest", "bakery"}))
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"food", category.Restaurant},
		{"meal_takeaway", category.Restaurant},
		{"cafe", category.Cafe},
		{"shopping_mall", category.Shopping},
		{"supermarket", category.Grocery},
		{"atm", category.Finance},
		{"doctor", category.Healthcare},
		{"university", category.Education},
		{"car_repair", category.Automotive},
		{"gym", category.Fitness},
		{"hair_care", category.Beauty},
		{"real_estate_agency", category.RealEstate},
		{"accounting", category.ProfessionalServices},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, category.Classify([]string{tt.tag}))
		})
	}
}

func TestDefaultTerms(t *testing.T) {
	assert.Len(t, category.DefaultTerms, 18)
	seen := map[string]bool{}
	for _, term := range category.DefaultTerms {
		assert.False(t, seen[term], "duplicate term %s", term)
		seen[term] = true
	}
	assert.True(t, category.Known("lawyer"))
	assert.False(t, category.Known("bakery"))
}
