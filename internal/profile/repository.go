// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kolade-dev/heartlink-backend/internal/common/apperrors"
)

// Directory is the narrow collaborator interface the matching core uses
// to look up users, profiles, devices, sessions and block relationships.
// Everything here is read-only from the matching core's point of view.
type Directory interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetProfileByUser(ctx context.Context, userID int64) (*Profile, error)

	// IsBlocked is directional: has userID blocked targetID.
	// Callers that need "blocked in either direction" check both.
	IsBlocked(ctx context.Context, userID, targetID int64) (bool, error)

	DeviceExists(ctx context.Context, deviceID string) (bool, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

// postgresDirectory implements Directory using PostgreSQL
type postgresDirectory struct {
	db *sqlx.DB
}

// NewPostgresDirectory creates a new PostgreSQL-backed directory
func NewPostgresDirectory(db *sqlx.DB) Directory {
	return &postgresDirectory{db: db}
}

const profileColumns = `
	u.id AS user_id, u.username, u.display_name, u.bio, u.birth_date,
	u.gender, u.latitude, u.longitude, u.interests,
	u.smoking, u.drinking, u.religion,
	u.preferred_gender, u.preferred_min_age, u.preferred_max_age,
	u.preferred_max_distance_km,
	u.last_active, u.created_at`

func (d *postgresDirectory) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT id, username, status FROM users WHERE id = $1`

	err := d.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (d *postgresDirectory) GetProfileByUser(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	query := `SELECT ` + profileColumns + ` FROM users u WHERE u.id = $1`

	err := d.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("profile for user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (d *postgresDirectory) IsBlocked(ctx context.Context, userID, targetID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blocked_users
			WHERE user_id = $1 AND blocked_id = $2
		)`

	err := d.db.GetContext(ctx, &exists, query, userID, targetID)
	return exists, err
}

func (d *postgresDirectory) DeviceExists(ctx context.Context, deviceID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1)`

	err := d.db.GetContext(ctx, &exists, query, deviceID)
	return exists, err
}

func (d *postgresDirectory) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1 AND expires_at > NOW())`

	err := d.db.GetContext(ctx, &exists, query, sessionID)
	return exists, err
}
