// Package deals runs the nearby-deals pipeline: fetch, normalize, filter,
// enrich, rank.
package deals

import (
	"sort"

	"github.com/localdeals/deals-api/internal/model"
)

// Rank selects the places to return: deal candidates sorted nearest-first
// and capped at maxResults. When no candidate exists the full list is
// returned instead, capped at fallbackLimit, so the response is never empty
// while any place data exists.
func Rank(places []model.Place, maxResults, fallbackLimit int) []model.Place {
	sorted := make([]model.Place, len(places))
	copy(sorted, places)
	sortByDistance(sorted)

	candidates := make([]model.Place, 0, len(sorted))
	for _, p := range sorted {
		if p.IsDealCandidate {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) > 0 {
		return truncate(candidates, maxResults)
	}
	return truncate(sorted, fallbackLimit)
}

// sortByDistance orders ascending by distance with the provider id as a
// tiebreak, keeping repeat responses byte-identical.
func sortByDistance(places []model.Place) {
	sort.SliceStable(places, func(i, j int) bool {
		if places[i].DistanceMiles != places[j].DistanceMiles {
			return places[i].DistanceMiles < places[j].DistanceMiles
		}
		return places[i].ID < places[j].ID
	})
}

func truncate(places []model.Place, limit int) []model.Place {
	if limit > 0 && len(places) > limit {
		return places[:limit]
	}
	return places
}
