package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

func TestHaversineKm(t *testing.T) {
	// London to Paris is roughly 344km
	dist := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, dist, 5)

	// Same point is zero
	assert.Zero(t, HaversineKm(51.5074, -0.1278, 51.5074, -0.1278))

	// Symmetric
	forward := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	backward := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestProfileDistanceKm_MissingLocation(t *testing.T) {
	lat, lng := 51.5074, -0.1278
	located := &profile.Profile{Latitude: &lat, Longitude: &lng}
	unlocated := &profile.Profile{}

	_, ok := ProfileDistanceKm(located, unlocated)
	assert.False(t, ok, "missing location must read as unknown, not zero")

	dist, ok := ProfileDistanceKm(located, located)
	assert.True(t, ok)
	assert.Zero(t, dist)
}

func TestGenderCompatible(t *testing.T) {
	women := "female"
	anyone := "any"

	assert.True(t, GenderCompatible("female", nil))
	assert.True(t, GenderCompatible("female", &profile.Preference{}))
	assert.True(t, GenderCompatible("male", &profile.Preference{Gender: &anyone}))
	assert.True(t, GenderCompatible("female", &profile.Preference{Gender: &women}))
	assert.False(t, GenderCompatible("male", &profile.Preference{Gender: &women}))
}

func TestAgeInRange(t *testing.T) {
	min, max := 25, 35

	assert.True(t, AgeInRange(40, nil))
	assert.True(t, AgeInRange(40, &profile.Preference{}))
	assert.True(t, AgeInRange(25, &profile.Preference{MinAge: &min, MaxAge: &max}))
	assert.True(t, AgeInRange(35, &profile.Preference{MinAge: &min, MaxAge: &max}))
	assert.False(t, AgeInRange(24, &profile.Preference{MinAge: &min, MaxAge: &max}))
	assert.False(t, AgeInRange(36, &profile.Preference{MinAge: &min, MaxAge: &max}))

	// One-sided bounds
	assert.True(t, AgeInRange(90, &profile.Preference{MinAge: &min}))
	assert.True(t, AgeInRange(18, &profile.Preference{MaxAge: &max}))
}

func TestProfileAge(t *testing.T) {
	ref := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	p := &profile.Profile{BirthDate: time.Date(1996, 6, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 30, p.AgeAt(ref), "birthday today counts the new year")

	p = &profile.Profile{BirthDate: time.Date(1996, 6, 16, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 29, p.AgeAt(ref), "birthday tomorrow does not")
}
