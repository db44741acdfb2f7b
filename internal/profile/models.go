// internal/profile/models.go

package profile

import (
	"time"

	"github.com/lib/pq"
)

// User is the minimal account view the matching core consumes.
// Account management itself belongs to the accounts service.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Status   string `json:"status" db:"status"` // active, suspended, deleted
}

// IsActive reports whether the account may appear anywhere in matching.
func (u *User) IsActive() bool {
	return u.Status == "active"
}

// Preference holds a user's matching preferences. Every field is
// optional; an unset field never rejects a candidate (permissive
// default), it simply doesn't constrain.
type Preference struct {
	Gender        *string  `json:"preferred_gender,omitempty" db:"preferred_gender"`
	MinAge        *int     `json:"preferred_min_age,omitempty" db:"preferred_min_age"`
	MaxAge        *int     `json:"preferred_max_age,omitempty" db:"preferred_max_age"`
	MaxDistanceKm *float64 `json:"preferred_max_distance_km,omitempty" db:"preferred_max_distance_km"`
}

// Profile is the read model of a user for filtering and scoring.
// The matching core never writes profiles; the profile service owns them.
type Profile struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	Username    string         `json:"username" db:"username"`
	DisplayName string         `json:"display_name" db:"display_name"`
	Bio         *string        `json:"bio,omitempty" db:"bio"`
	BirthDate   time.Time      `json:"birth_date" db:"birth_date"`
	Gender      string         `json:"gender" db:"gender"`
	Latitude    *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64       `json:"longitude,omitempty" db:"longitude"`
	Interests   pq.StringArray `json:"interests" db:"interests"`

	// Lifestyle attributes, scored but never hard-filtered
	Smoking  *string `json:"smoking,omitempty" db:"smoking"`
	Drinking *string `json:"drinking,omitempty" db:"drinking"`
	Religion *string `json:"religion,omitempty" db:"religion"`

	Preference

	LastActive time.Time `json:"last_active" db:"last_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Age returns the user's current age in whole years.
func (p *Profile) Age() int {
	return p.AgeAt(time.Now())
}

// AgeAt returns the age at the given instant.
func (p *Profile) AgeAt(t time.Time) int {
	years := t.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(t) {
		years--
	}
	return years
}

// HasLocation reports whether both coordinates are present. A profile
// without a location has "distance unknown", never distance zero.
func (p *Profile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Pref returns the preference record. The pointer form keeps the
// permissive-default contract explicit at call sites.
func (p *Profile) Pref() *Preference {
	return &p.Preference
}

// Device is a registered client device; swipes must reference one.
type Device struct {
	ID       string    `json:"id" db:"id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	Platform string    `json:"platform" db:"platform"`
	LastSeen time.Time `json:"last_seen" db:"last_seen"`
}

// Session is an app session; swipes may reference one for analytics.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
