// Package query translates (category, radius, origin) tuples into
// provider-specific search queries.
package query

import "strings"

// TagClasses groups the OSM tag values included for one category.
type TagClasses struct {
	Amenities []string
	Shops     []string
}

// Catalog is the immutable category configuration shared by the query
// builders, the normalizer, and the relevance filter. It is constructed once
// at startup and passed explicitly; nothing mutates it afterwards.
type Catalog struct {
	categories map[string]TagClasses
	googleType map[string]string

	candidateAmenities map[string]bool
	candidateShops     map[string]bool
	civicGoogleTypes   map[string]bool
}

// DefaultCatalog returns the built-in category configuration.
func DefaultCatalog() *Catalog {
	return &Catalog{
		categories: map[string]TagClasses{
			"food": {
				Amenities: []string{"restaurant", "fast_food", "cafe", "bar", "pub", "ice_cream", "food_court"},
				Shops:     []string{"bakery", "butcher", "greengrocer", "deli", "supermarket", "convenience"},
			},
			"gas": {
				Amenities: []string{"fuel", "charging_station"},
			},
			"groceries": {
				Shops: []string{"supermarket", "convenience", "greengrocer", "bakery", "butcher", "deli"},
			},
		},
		googleType: map[string]string{
			"food":      "restaurant",
			"groceries": "supermarket",
			"gas":       "gas_station",
		},
		candidateAmenities: setOf(
			"restaurant", "fast_food", "cafe", "bar", "pub", "ice_cream",
			"food_court", "fuel", "charging_station", "pharmacy", "cinema",
			"marketplace", "car_wash", "vending_machine",
		),
		candidateShops: setOf(
			"supermarket", "convenience", "greengrocer", "bakery", "butcher",
			"deli", "clothes", "shoes", "mall", "department_store",
			"electronics", "mobile_phone", "beauty", "chemist", "hairdresser",
			"books", "gift", "jewelry", "sports", "toys", "variety_store",
			"hardware", "doityourself", "furniture", "pet", "florist",
			"alcohol", "coffee", "tea",
		),
		civicGoogleTypes: setOf(
			"school", "primary_school", "secondary_school", "university",
			"local_government_office", "city_hall", "courthouse", "embassy",
			"police", "fire_station", "hospital", "library", "cemetery",
			"church", "mosque", "synagogue", "place_of_worship",
		),
	}
}

// NormalizeCategory lowercases and trims a user-supplied category token.
// Unrecognized tokens map to "general", the unfiltered default.
func (c *Catalog) NormalizeCategory(category string) string {
	cat := strings.ToLower(strings.TrimSpace(category))
	if _, ok := c.categories[cat]; ok {
		return cat
	}
	return "general"
}

// Classes returns the tag classes for a recognized category. The second
// return is false for "general", which carries no tag restriction.
func (c *Catalog) Classes(category string) (TagClasses, bool) {
	tc, ok := c.categories[c.NormalizeCategory(category)]
	return tc, ok
}

// IsDealCandidate reports whether a place with the given amenity and shop
// tags is a commercial venue. Civic tags (schools, government offices,
// emergency services) are deliberately absent from both allow-lists.
func (c *Catalog) IsDealCandidate(amenity, shop string) bool {
	if shop != "" && c.candidateShops[shop] {
		return true
	}
	return amenity != "" && c.candidateAmenities[amenity]
}

// IsGoogleDealCandidate reports whether a commercial-provider place is a
// deal candidate. The commercial API only returns tagged establishments, so
// everything qualifies unless a civic type appears.
func (c *Catalog) IsGoogleDealCandidate(types []string) bool {
	for _, t := range types {
		if c.civicGoogleTypes[t] {
			return false
		}
	}
	return true
}

func setOf(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
