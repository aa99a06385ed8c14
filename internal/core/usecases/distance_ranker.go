package usecases

import (
	"cmp"
	"slices"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/pkg/geospatial"
)

// DefaultCandidateLimit is how many nearest POIs enter travel-time ranking.
const DefaultCandidateLimit = 20

// RankByDistance returns the limit POIs closest to origin by great-circle
// distance, nearest first. Equal distances keep their input order.
func RankByDistance(origin domain.GeoPoint, pois []domain.PointOfInterest, limit int) []domain.Candidate {
	if limit <= 0 || len(pois) == 0 {
		return []domain.Candidate{}
	}

	candidates := make([]domain.Candidate, len(pois))
	for i, p := range pois {
		candidates[i] = domain.Candidate{
			POI:        p,
			DistanceKm: geospatial.HaversineKm(origin.Lat, origin.Lon, p.Location.Lat, p.Location.Lon),
		}
	}

	slices.SortStableFunc(candidates, func(a, b domain.Candidate) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
