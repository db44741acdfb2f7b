// internal/matching/filters.go
// In-process half of the candidate filter pipeline. The store-side half
// (self, account status, already-decided, blocks) runs in SQL; the
// mutual-compatibility predicates run here because they need both
// profiles in hand.

package matching

import (
	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

// Constraints are optional caller-supplied overrides. When present they
// replace the requester's preference-derived distance or age checks
// rather than combining with them.
type Constraints struct {
	RadiusKm *float64
	MinAge   *int
	MaxAge   *int
}

// CandidateFilter narrows the raw pool pulled from the store.
type CandidateFilter struct {
	Gender string // candidate gender, empty = any
	Limit  int    // raw pool cap, applied before scoring
}

// eligiblePair applies the mutual basic-compatibility predicates from
// both users' points of view. Missing preference data always passes.
func eligiblePair(requester, candidate *profile.Profile, c *Constraints) bool {
	// Gender must be acceptable in both directions.
	if !GenderCompatible(candidate.Gender, requester.Pref()) {
		return false
	}
	if !GenderCompatible(requester.Gender, candidate.Pref()) {
		return false
	}

	// Requester-side age check, overridden by an explicit band.
	candidateAge := candidate.Age()
	if c != nil && (c.MinAge != nil || c.MaxAge != nil) {
		if c.MinAge != nil && candidateAge < *c.MinAge {
			return false
		}
		if c.MaxAge != nil && candidateAge > *c.MaxAge {
			return false
		}
	} else if !AgeInRange(candidateAge, requester.Pref()) {
		return false
	}

	// Candidate-side age check always applies.
	if !AgeInRange(requester.Age(), candidate.Pref()) {
		return false
	}

	return distanceAcceptable(requester, candidate, c)
}

// distanceAcceptable enforces the distance cutoff. An explicit radius
// replaces the preference-derived check and requires a known distance;
// the preference-derived check only applies when both users have a
// location, with the smaller of the two declared limits as the cutoff.
func distanceAcceptable(requester, candidate *profile.Profile, c *Constraints) bool {
	dist, known := ProfileDistanceKm(requester, candidate)

	if c != nil && c.RadiusKm != nil {
		return known && dist <= *c.RadiusKm
	}

	if !known {
		// Distance unknown: never reject for absence of data.
		return true
	}

	cutoff, limited := effectiveDistanceLimit(requester.Pref(), candidate.Pref())
	if !limited {
		return true
	}

	return dist <= cutoff
}

// effectiveDistanceLimit returns the stricter of the two max-distance
// preferences, or limited=false when neither user declares one.
func effectiveDistanceLimit(a, b *profile.Preference) (float64, bool) {
	var cutoff float64
	limited := false

	for _, pref := range []*profile.Preference{a, b} {
		if pref == nil || pref.MaxDistanceKm == nil {
			continue
		}
		if !limited || *pref.MaxDistanceKm < cutoff {
			cutoff = *pref.MaxDistanceKm
		}
		limited = true
	}

	return cutoff, limited
}
