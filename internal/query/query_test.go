package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localdeals/deals-api/internal/geodist"
)

func TestNormalizeCategory(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "food", c.NormalizeCategory("food"))
	assert.Equal(t, "food", c.NormalizeCategory("  FOOD "))
	assert.Equal(t, "gas", c.NormalizeCategory("Gas"))
	assert.Equal(t, "groceries", c.NormalizeCategory("groceries"))
	assert.Equal(t, "general", c.NormalizeCategory(""))
	assert.Equal(t, "general", c.NormalizeCategory("bowling"))
	assert.Equal(t, "general", c.NormalizeCategory(`";out;`))
}

func TestOverpass_FoodIncludesRestaurant(t *testing.T) {
	c := DefaultCatalog()
	q := c.Overpass(geodist.Coord(42.1, -72.6), 10, "food")

	ql := q.QL(25)
	assert.Contains(t, ql, "restaurant")
	assert.Contains(t, ql, "fast_food")
	assert.Contains(t, ql, "bakery")
	assert.Contains(t, ql, "(around:16093,42.100000,-72.600000)")
	assert.Contains(t, ql, "[out:json][timeout:25];")
	assert.Contains(t, ql, "out center;")
}

func TestOverpass_GasIncludesFuel(t *testing.T) {
	c := DefaultCatalog()
	q := c.Overpass(geodist.Coord(42.1, -72.6), 10, "gas")

	ql := q.QL(25)
	assert.Contains(t, ql, "fuel")
	assert.Contains(t, ql, "charging_station")
	assert.NotContains(t, ql, "restaurant")
}

func TestOverpass_UnrecognizedFallsBackToGeneral(t *testing.T) {
	c := DefaultCatalog()
	q := c.Overpass(geodist.Coord(42.1, -72.6), 10, "karaoke")

	require.Len(t, q.Clauses, 2)
	assert.Empty(t, q.Clauses[0].Values)
	assert.Empty(t, q.Clauses[1].Values)

	ql := q.QL(25)
	assert.Contains(t, ql, `["shop"]`)
	assert.Contains(t, ql, `["amenity"]`)
	assert.NotContains(t, ql, "~")
}

func TestOverpass_QueriesNodesAndWays(t *testing.T) {
	c := DefaultCatalog()
	ql := c.Overpass(geodist.Coord(42.1, -72.6), 10, "gas").QL(25)

	assert.Contains(t, ql, "node(around:")
	assert.Contains(t, ql, "way(around:")
}

func TestGoogleParams_TypeMapping(t *testing.T) {
	c := DefaultCatalog()
	origin := geodist.Coord(42.1, -72.6)

	assert.Equal(t, "restaurant", c.GoogleParams(origin, 10, "food", "", 50000).Get("type"))
	assert.Equal(t, "supermarket", c.GoogleParams(origin, 10, "groceries", "", 50000).Get("type"))
	assert.Equal(t, "gas_station", c.GoogleParams(origin, 10, "gas", "", 50000).Get("type"))
	assert.Equal(t, "store", c.GoogleParams(origin, 10, "whatever", "", 50000).Get("type"))
}

func TestGoogleParams_RadiusClamped(t *testing.T) {
	c := DefaultCatalog()
	origin := geodist.Coord(42.1, -72.6)

	params := c.GoogleParams(origin, 100, "food", "", 50000)
	assert.Equal(t, "50000", params.Get("radius"))

	params = c.GoogleParams(origin, 10, "food", "", 50000)
	assert.Equal(t, "16093", params.Get("radius"))
}

func TestGoogleParams_Keyword(t *testing.T) {
	c := DefaultCatalog()
	origin := geodist.Coord(42.1, -72.6)

	params := c.GoogleParams(origin, 10, "food", " tacos ", 50000)
	assert.Equal(t, "tacos", params.Get("keyword"))
	assert.Equal(t, "42.100000,-72.600000", params.Get("location"))

	params = c.GoogleParams(origin, 10, "food", "   ", 50000)
	assert.Empty(t, params.Get("keyword"))
}

func TestIsDealCandidate(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.IsDealCandidate("restaurant", ""))
	assert.True(t, c.IsDealCandidate("", "supermarket"))
	assert.True(t, c.IsDealCandidate("fuel", ""))
	assert.True(t, c.IsDealCandidate("", "clothes"))

	// Civic and non-commercial tags are not candidates.
	assert.False(t, c.IsDealCandidate("school", ""))
	assert.False(t, c.IsDealCandidate("townhall", ""))
	assert.False(t, c.IsDealCandidate("police", ""))
	assert.False(t, c.IsDealCandidate("", ""))
}
