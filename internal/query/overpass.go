package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/localdeals/deals-api/internal/geodist"
)

// Clause is one tag filter in an Overpass query. An empty Values slice is a
// presence filter (the tag merely has to exist).
type Clause struct {
	Key    string
	Values []string
}

// NearbyQuery is a typed Overpass query: a union of tag clauses applied to
// nodes and ways around an origin point. Building the query as a tree and
// serializing it once keeps user-supplied text out of the QL string.
type NearbyQuery struct {
	Origin  geom.Coord
	RadiusM int
	Clauses []Clause
}

// Overpass builds the typed query for a category around the origin.
// Radius is given in miles and converted to whole meters.
func (c *Catalog) Overpass(origin geom.Coord, radiusMiles float64, category string) NearbyQuery {
	q := NearbyQuery{
		Origin:  origin,
		RadiusM: geodist.MetersFromMiles(radiusMiles),
	}

	tc, ok := c.Classes(category)
	if !ok {
		// General: everything tagged as a shop or an amenity.
		q.Clauses = []Clause{{Key: "shop"}, {Key: "amenity"}}
		return q
	}

	if len(tc.Amenities) > 0 {
		q.Clauses = append(q.Clauses, Clause{Key: "amenity", Values: tc.Amenities})
	}
	if len(tc.Shops) > 0 {
		q.Clauses = append(q.Clauses, Clause{Key: "shop", Values: tc.Shops})
	}
	return q
}

// QL serializes the query to Overpass QL with the given server-side timeout.
func (q NearbyQuery) QL(timeoutSecs int) string {
	lat := strconv.FormatFloat(q.Origin.Y(), 'f', 6, 64)
	lon := strconv.FormatFloat(q.Origin.X(), 'f', 6, 64)
	around := fmt.Sprintf("(around:%d,%s,%s)", q.RadiusM, lat, lon)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];(", timeoutSecs)
	for _, cl := range q.Clauses {
		filter := cl.serialize()
		b.WriteString("node" + around + filter + ";")
		b.WriteString("way" + around + filter + ";")
	}
	b.WriteString(");out center;")
	return b.String()
}

// serialize renders a clause as an Overpass tag filter. Values are
// regexp-quoted so tag tokens can never break out of the filter expression.
func (cl Clause) serialize() string {
	if len(cl.Values) == 0 {
		return fmt.Sprintf("[%q]", cl.Key)
	}
	quoted := make([]string, len(cl.Values))
	for i, v := range cl.Values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return fmt.Sprintf("[%q~\"^(%s)$\"]", cl.Key, strings.Join(quoted, "|"))
}
