// internal/matching/compat.go

package matching

import (
	"math"
	"time"

	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

// Sub-score weights. They sum to 1 so the combined score stays in [0,1].
const (
	weightInterests = 0.30
	weightDistance  = 0.25
	weightAge       = 0.25
	weightLifestyle = 0.20
)

// ageSpread is the age difference at which the age sub-score reaches zero.
const ageSpread = 20.0

// distanceDecayKm controls the exponential falloff of the distance
// sub-score: ~0.37 at 50km, ~0.14 at 100km.
const distanceDecayKm = 50.0

// CompatibilityFactors breaks a score down into its components.
type CompatibilityFactors struct {
	AgeProximity      float64 `json:"age_proximity"`
	DistanceProximity float64 `json:"distance_proximity"`
	InterestOverlap   float64 `json:"interest_overlap"`
	LifestyleMatch    float64 `json:"lifestyle_match"`
}

// CompatibilityScore combines profile attributes into a single score in
// [0,1]. Deterministic, and symmetric up to floating-point ordering.
func CompatibilityScore(a, b *profile.Profile) (float64, *CompatibilityFactors) {
	now := time.Now()
	factors := &CompatibilityFactors{
		AgeProximity:      ageScore(a.AgeAt(now), b.AgeAt(now)),
		DistanceProximity: distanceScore(a, b),
		InterestOverlap:   interestScore(a.Interests, b.Interests),
		LifestyleMatch:    lifestyleScore(a, b),
	}

	total := factors.AgeProximity*weightAge +
		factors.DistanceProximity*weightDistance +
		factors.InterestOverlap*weightInterests +
		factors.LifestyleMatch*weightLifestyle

	return clamp01(total), factors
}

// ageScore decays linearly with the age gap.
func ageScore(ageA, ageB int) float64 {
	gap := math.Abs(float64(ageA - ageB))
	return clamp01(1 - gap/ageSpread)
}

// distanceScore decays exponentially with distance. When either
// location is missing the distance is unknown and contributes zero.
func distanceScore(a, b *profile.Profile) float64 {
	dist, ok := ProfileDistanceKm(a, b)
	if !ok {
		return 0
	}
	return clamp01(math.Exp(-dist / distanceDecayKm))
}

// interestScore is the Jaccard similarity of the two interest sets.
// Either side empty is neutral rather than a rejection.
func interestScore(interestsA, interestsB []string) float64 {
	if len(interestsA) == 0 || len(interestsB) == 0 {
		return 0.5
	}

	seen := make(map[string]bool, len(interestsA))
	for _, interest := range interestsA {
		seen[interest] = true
	}

	common := 0
	for _, interest := range interestsB {
		if seen[interest] {
			common++
		}
	}

	union := len(interestsA) + len(interestsB) - common
	if union == 0 {
		return 0
	}

	return clamp01(float64(common) / float64(union))
}

// lifestyleScore averages categorical agreement over the lifestyle
// attributes both users have set. Nothing set on either side is neutral.
func lifestyleScore(a, b *profile.Profile) float64 {
	compared := 0
	agreed := 0

	pairs := [][2]*string{
		{a.Smoking, b.Smoking},
		{a.Drinking, b.Drinking},
		{a.Religion, b.Religion},
	}
	for _, pair := range pairs {
		if pair[0] == nil || pair[1] == nil {
			continue
		}
		compared++
		if *pair[0] == *pair[1] {
			agreed++
		}
	}

	if compared == 0 {
		return 0.5
	}

	return clamp01(float64(agreed) / float64(compared))
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0, v))
}
