// internal/matching/geo.go
// Great-circle distance and the basic preference predicates.
// All pure functions, no store access.

package matching

import (
	"math"

	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ProfileDistanceKm returns the distance between two profiles. ok is
// false when either profile has no location; a missing location means
// "distance unknown", never zero.
func ProfileDistanceKm(a, b *profile.Profile) (float64, bool) {
	if !a.HasLocation() || !b.HasLocation() {
		return 0, false
	}
	return HaversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude), true
}

// GenderCompatible reports whether a candidate's gender satisfies the
// preference. A missing preference accepts everyone.
func GenderCompatible(candidateGender string, pref *profile.Preference) bool {
	if pref == nil || pref.Gender == nil || *pref.Gender == "" || *pref.Gender == "any" {
		return true
	}
	return candidateGender == *pref.Gender
}

// AgeInRange reports whether a candidate's age satisfies the preference
// age band. Missing bounds accept everything on that side.
func AgeInRange(candidateAge int, pref *profile.Preference) bool {
	if pref == nil {
		return true
	}
	if pref.MinAge != nil && candidateAge < *pref.MinAge {
		return false
	}
	if pref.MaxAge != nil && candidateAge > *pref.MaxAge {
		return false
	}
	return true
}
