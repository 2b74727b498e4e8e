// Package matching implements candidate discovery for buddy matching:
// eligibility filtering over a profile pool and deterministic ranking
// with pagination. Everything in this package is pure — callers supply
// the pool snapshot and receive a result, no I/O happens here.
package matching

import (
	"buddyup/internal/geo"
	"buddyup/internal/models"
)

// DefaultRadiusKm is the search radius applied when a filter does not set one.
const DefaultRadiusKm = 50.0

// FilterSpec enumerates the optional discovery criteria. A nil/zero field
// means "no constraint" except MaxDistanceKm, which falls back to
// DefaultRadiusKm so distance is always bounded.
type FilterSpec struct {
	SportID       *uint
	SkillLevel    *models.SkillLevel
	MaxDistanceKm float64
	Days          []models.Weekday
	Times         []models.TimeOfDay
}

// EffectiveRadiusKm returns the configured radius or the default.
func (f FilterSpec) EffectiveRadiusKm() float64 {
	if f.MaxDistanceKm > 0 {
		return f.MaxDistanceKm
	}
	return DefaultRadiusKm
}

// PoolEntry is one row of the candidate pool: a profile joined with its
// preference for the filtered sport. Preference is nil when discovery is
// sport-agnostic.
type PoolEntry struct {
	User       models.User
	Preference *models.SportPreference
}

// Candidate is a pool entry that passed every active predicate, annotated
// with the computed distance to the requester.
type Candidate struct {
	User       models.User             `json:"user"`
	Preference *models.SportPreference `json:"preference,omitempty"`
	DistanceKm float64                 `json:"distance_km"`
}

// FilterCandidates applies every active predicate of spec to the pool and
// returns the eligible candidates. excluded holds user IDs that must not be
// surfaced (already pending or already matched with the requester).
//
// The requester must have a coordinate since distance is always bounded;
// otherwise MissingLocation is returned. Candidates without a coordinate
// are skipped — distance to them is unknowable, never assumed zero.
func FilterCandidates(requester *models.User, spec FilterSpec, pool []PoolEntry, excluded map[uint]bool) ([]Candidate, error) {
	if !requester.HasLocation() {
		return nil, models.NewMissingLocationError()
	}
	origin := geo.Coordinate{Lat: *requester.Latitude, Lon: *requester.Longitude}
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	radius := spec.EffectiveRadiusKm()
	out := make([]Candidate, 0, len(pool))

	for _, entry := range pool {
		cand := entry.User
		if cand.ID == requester.ID || !cand.Public {
			continue
		}
		if excluded[cand.ID] {
			continue
		}

		// Sport: a preference row is required whenever a sport is filtered.
		if spec.SportID != nil {
			if entry.Preference == nil || entry.Preference.SportID != *spec.SportID {
				continue
			}
		}
		if spec.SkillLevel != nil {
			if entry.Preference == nil || entry.Preference.SkillLevel != *spec.SkillLevel {
				continue
			}
		}

		if !cand.HasLocation() {
			continue
		}
		dist, err := geo.DistanceKm(origin, geo.Coordinate{Lat: *cand.Latitude, Lon: *cand.Longitude})
		if err != nil {
			return nil, err
		}
		// The candidate's own travel radius is respected even when the
		// requester's filter is laxer.
		candRadius := cand.MaxTravelKm
		if candRadius <= 0 {
			candRadius = models.DefaultMaxTravelKm
		}
		if dist > radius || dist > candRadius {
			continue
		}

		if len(spec.Days) > 0 && !models.WeekdaysOverlap(spec.Days, cand.PreferredDays) {
			continue
		}
		if len(spec.Times) > 0 && !models.TimesOverlap(spec.Times, cand.PreferredTimes) {
			continue
		}

		out = append(out, Candidate{
			User:       cand,
			Preference: entry.Preference,
			DistanceKm: dist,
		})
	}

	return out, nil
}
