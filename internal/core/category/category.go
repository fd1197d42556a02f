// Package category maps raw provider type tags onto the canonical business
// categories used in snapshots and prompts.
package category

// Canonical category labels.
const (
	Restaurant           = "Restaurant"
	Cafe                 = "Cafe"
	Retail               = "Retail"
	Shopping             = "Shopping"
	Grocery              = "Grocery"
	Finance              = "Finance"
	Healthcare           = "Healthcare"
	Education            = "Education"
	Automotive           = "Automotive"
	Fitness              = "Fitness"
	Beauty               = "Beauty"
	RealEstate           = "Real Estate"
	ProfessionalServices = "Professional Services"
	Other                = "Other"
)

// DefaultTerms is the ordered list of category queries issued per Region.
var DefaultTerms = []string{
	"restaurant", "store", "cafe", "bank", "hospital", "school",
	"gas_station", "pharmacy", "supermarket", "shopping_mall",
	"gym", "beauty_salon", "real_estate_agency", "lawyer",
	"accounting", "electronics_store", "clothing_store", "bakery",
}

var tagCategories = map[string]string{
	"restaurant":         Restaurant,
	"food":               Restaurant,
	"meal_takeaway":      Restaurant,
	"cafe":               Cafe,
	"store":              Retail,
	"shopping_mall":      Shopping,
	"supermarket":        Grocery,
	"bank":               Finance,
	"atm":                Finance,
	"hospital":           Healthcare,
	"pharmacy":           Healthcare,
	"doctor":             Healthcare,
	"school":             Education,
	"university":         Education,
	"gas_station":        Automotive,
	"car_repair":         Automotive,
	"gym":                Fitness,
	"beauty_salon":       Beauty,
	"hair_care":          Beauty,
	"real_estate_agency": RealEstate,
	"lawyer":             ProfessionalServices,
	"accounting":         ProfessionalServices,
}

// Classify returns the category of the first tag, in the order given, that
// has a known mapping. It is first-match, not best-match: a place tagged
// ["store", "restaurant"] is Retail because the provider listed "store" first.
// Returns Other when no tag is known.
func Classify(tags []string) string {
	for _, t := range tags {
		if c, ok := tagCategories[t]; ok {
			return c
		}
	}
	return Other
}

// Known reports whether tag has a category mapping.
func Known(tag string) bool {
	_, ok := tagCategories[tag]
	return ok
}
