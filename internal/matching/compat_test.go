package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

func birthDateForAge(age int) time.Time {
	return time.Now().AddDate(-age, 0, -1)
}

func TestCompatibilityScore_Bounds(t *testing.T) {
	lat, lng := 6.5244, 3.3792
	smoking := "never"

	a := &profile.Profile{
		UserID:    1,
		BirthDate: birthDateForAge(28),
		Latitude:  &lat, Longitude: &lng,
		Interests: []string{"hiking", "jazz"},
		Smoking:   &smoking,
	}
	b := &profile.Profile{
		UserID:    2,
		BirthDate: birthDateForAge(28),
		Latitude:  &lat, Longitude: &lng,
		Interests: []string{"hiking", "jazz"},
		Smoking:   &smoking,
	}

	score, factors := CompatibilityScore(a, b)
	assert.InDelta(t, 1.0, score, 1e-9, "identical co-located profiles score 1")
	assert.InDelta(t, 1.0, factors.AgeProximity, 1e-9)
	assert.InDelta(t, 1.0, factors.DistanceProximity, 1e-9)
	assert.InDelta(t, 1.0, factors.InterestOverlap, 1e-9)
	assert.InDelta(t, 1.0, factors.LifestyleMatch, 1e-9)
}

func TestCompatibilityScore_WorstCase(t *testing.T) {
	smokes, never := "daily", "never"

	a := &profile.Profile{
		UserID:    1,
		BirthDate: birthDateForAge(22),
		Interests: []string{"hiking"},
		Smoking:   &never,
	}
	b := &profile.Profile{
		UserID:    2,
		BirthDate: birthDateForAge(55),
		Interests: []string{"opera"},
		Smoking:   &smokes,
	}

	score, factors := CompatibilityScore(a, b)
	assert.Zero(t, factors.AgeProximity, "gap beyond the spread floors at zero")
	assert.Zero(t, factors.DistanceProximity, "unknown distance contributes nothing")
	assert.Zero(t, factors.InterestOverlap)
	assert.Zero(t, factors.LifestyleMatch)
	assert.Zero(t, score)
}

func TestCompatibilityScore_Symmetric(t *testing.T) {
	latA, lngA := 6.5244, 3.3792
	latB, lngB := 6.4281, 3.4219
	drinkA, drinkB := "socially", "never"

	a := &profile.Profile{
		UserID:    1,
		BirthDate: birthDateForAge(30),
		Latitude:  &latA, Longitude: &lngA,
		Interests: []string{"food", "travel", "tech"},
		Drinking:  &drinkA,
	}
	b := &profile.Profile{
		UserID:    2,
		BirthDate: birthDateForAge(26),
		Latitude:  &latB, Longitude: &lngB,
		Interests: []string{"travel", "art"},
		Drinking:  &drinkB,
	}

	forward, _ := CompatibilityScore(a, b)
	backward, _ := CompatibilityScore(b, a)
	assert.InDelta(t, forward, backward, 1e-9)
	assert.Greater(t, forward, 0.0)
	assert.LessOrEqual(t, forward, 1.0)
}

func TestInterestScore(t *testing.T) {
	assert.InDelta(t, 0.5, interestScore(nil, []string{"a"}), 1e-9, "empty set is neutral")
	assert.InDelta(t, 0.5, interestScore([]string{"a"}, nil), 1e-9)
	assert.InDelta(t, 1.0, interestScore([]string{"a", "b"}, []string{"a", "b"}), 1e-9)
	assert.InDelta(t, 0.0, interestScore([]string{"a"}, []string{"b"}), 1e-9)

	// |{a,b} ∩ {b,c}| / |{a,b} ∪ {b,c}| = 1/3
	assert.InDelta(t, 1.0/3.0, interestScore([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
}

func TestLifestyleScore(t *testing.T) {
	never, daily := "never", "daily"

	a := &profile.Profile{Smoking: &never, Drinking: &never}
	b := &profile.Profile{Smoking: &never, Drinking: &daily}
	assert.InDelta(t, 0.5, lifestyleScore(a, b), 1e-9, "one of two compared attributes agrees")

	// Attributes set on only one side are skipped, not penalized
	a = &profile.Profile{Smoking: &never, Religion: &never}
	b = &profile.Profile{Smoking: &never}
	assert.InDelta(t, 1.0, lifestyleScore(a, b), 1e-9)

	// Nothing comparable is neutral
	assert.InDelta(t, 0.5, lifestyleScore(&profile.Profile{}, &profile.Profile{}), 1e-9)
}

func TestAgeScore(t *testing.T) {
	assert.InDelta(t, 1.0, ageScore(30, 30), 1e-9)
	assert.InDelta(t, 0.5, ageScore(30, 40), 1e-9)
	assert.Zero(t, ageScore(20, 45), "gap past the spread clamps to zero")
}
