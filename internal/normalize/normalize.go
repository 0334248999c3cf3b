// Package normalize maps raw provider records into canonical Place records.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/twpayne/go-geom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/localdeals/deals-api/internal/geodist"
	"github.com/localdeals/deals-api/internal/model"
	"github.com/localdeals/deals-api/internal/query"
	"github.com/localdeals/deals-api/pkg/overpass"
	"github.com/localdeals/deals-api/pkg/places"
)

// placeholderName stands in when the provider omits a display name.
const placeholderName = "Local Business"

const mapSearchBase = "https://www.google.com/maps/search/?api=1&query="


// FromOverpass converts Overpass elements into Place records. Elements
// without usable coordinates are silently excluded.
func FromOverpass(elements []overpass.Element, origin geom.Coord, catalog *query.Catalog) []model.Place {
	out := make([]model.Place, 0, len(elements))
	for _, e := range elements {
		lat, lon, ok := e.Position()
		if !ok {
			continue
		}

		name := e.Tags["name"]
		if name == "" {
			name = placeholderName
		}

		amenity := e.Tags["amenity"]
		shop := e.Tags["shop"]
		label := categoryLabel(shop, amenity, e.Tags["cuisine"])
		address := formatAddress(e.Tags)

		description := address
		if description == "" {
			description = "Local place near you."
		}

		p := model.Place{
			ID:              fmt.Sprintf("%s/%d", e.Type, e.ID),
			StoreName:       name,
			Title:           name,
			Description:     description,
			DistanceMiles:   geodist.Miles(origin, geodist.Coord(lat, lon)),
			Category:        label,
			Address:         address,
			Latitude:        lat,
			Longitude:       lon,
			URL:             resolveLink(e.Tags, name, lat, lon),
			IsDealCandidate: catalog.IsDealCandidate(amenity, shop),
		}
		out = append(out, p)
	}
	return out
}

// FromGoogle converts commercial-API results into Place records. photoURL
// resolves a photo reference into a link and may be nil.
func FromGoogle(results []places.Result, origin geom.Coord, catalog *query.Catalog, photoURL func(ref string) string) []model.Place {
	out := make([]model.Place, 0, len(results))
	for _, r := range results {
		loc := r.Geometry.Location
		if loc == nil {
			continue
		}

		name := r.Name
		if name == "" {
			name = placeholderName
		}

		label := "Local"
		if len(r.Types) > 0 {
			label = titleize(r.Types[0])
		}

		description := r.Vicinity
		if description == "" {
			description = "Local place near you."
		}

		p := model.Place{
			ID:              r.PlaceID,
			StoreName:       name,
			Title:           name,
			Description:     description,
			DistanceMiles:   geodist.Miles(origin, geodist.Coord(loc.Lat, loc.Lng)),
			Category:        label,
			Address:         r.Vicinity,
			Latitude:        loc.Lat,
			Longitude:       loc.Lng,
			URL:             "https://www.google.com/maps/place/?q=place_id:" + url.QueryEscape(r.PlaceID),
			IsDealCandidate: catalog.IsGoogleDealCandidate(r.Types),
		}

		if r.Rating > 0 {
			rating := r.Rating
			p.Rating = &rating
		}
		if r.UserRatingsTotal > 0 {
			total := r.UserRatingsTotal
			p.UserRatingsTotal = &total
		}
		if photoURL != nil && len(r.Photos) > 0 {
			if u := photoURL(r.Photos[0].PhotoReference); u != "" {
				p.ImageURL = &u
			}
		}

		out = append(out, p)
	}
	return out
}

// categoryLabel picks the category by tag priority: shop, then amenity, then
// cuisine, then the literal "Local".
func categoryLabel(shop, amenity, cuisine string) string {
	for _, tag := range []string{shop, amenity, cuisine} {
		if tag != "" {
			return titleize(tag)
		}
	}
	return "Local"
}

// titleize turns a raw tag value like "fast_food" into "Fast Food".
// A fresh caser per call: cases.Caser carries state and is not safe for
// concurrent use.
func titleize(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}

// formatAddress joins house number + street and city, omitting empty parts.
func formatAddress(tags map[string]string) string {
	street := strings.TrimSpace(strings.Join(nonEmpty(tags["addr:housenumber"], tags["addr:street"]), " "))
	parts := nonEmpty(street, tags["addr:city"])
	return strings.Join(parts, ", ")
}

// resolveLink prefers the provider-declared website; otherwise it builds a
// map-search link from name+city, name+street, or raw coordinates.
func resolveLink(tags map[string]string, name string, lat, lon float64) string {
	if site := tags["website"]; site != "" {
		return site
	}
	if site := tags["contact:website"]; site != "" {
		return site
	}

	var q string
	switch {
	case tags["addr:city"] != "":
		q = name + " " + tags["addr:city"]
	case tags["addr:street"] != "":
		q = name + " " + tags["addr:street"]
	default:
		q = fmt.Sprintf("%f,%f", lat, lon)
	}
	return mapSearchBase + url.QueryEscape(q)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
