package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/localdeals/deals-api/internal/geodist"
)

// googleDefaultType is the nearby-search type used for unrecognized
// categories: a generic store / shop.
const googleDefaultType = "store"

// GoogleParams builds the query parameters for a Google Places nearby
// search. Radius is clamped to maxRadiusM (the API rejects larger values).
// The optional search keyword applies only to this provider.
func (c *Catalog) GoogleParams(origin geom.Coord, radiusMiles float64, category, search string, maxRadiusM int) url.Values {
	radiusM := geodist.MetersFromMiles(radiusMiles)
	if radiusM > maxRadiusM {
		radiusM = maxRadiusM
	}

	placeType, ok := c.googleType[c.NormalizeCategory(category)]
	if !ok {
		placeType = googleDefaultType
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%s,%s",
		strconv.FormatFloat(origin.Y(), 'f', 6, 64),
		strconv.FormatFloat(origin.X(), 'f', 6, 64)))
	params.Set("radius", strconv.Itoa(radiusM))
	params.Set("type", placeType)

	if kw := strings.TrimSpace(search); kw != "" {
		params.Set("keyword", kw)
	}

	return params
}
