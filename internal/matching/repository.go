// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kolade-dev/heartlink-backend/internal/common/apperrors"
	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

// Repository is the storage boundary for the matching core. It owns the
// swipe log, the interest marks and the matches; profiles are read-only
// input to FindCandidates.
type Repository interface {
	// InTx runs fn against a transactional view of the repository. The
	// swipe path uses it so append + upsert + mutual check + match
	// transition commit or fail as one unit.
	InTx(ctx context.Context, fn func(Repository) error) error

	// Swipe log (append-only)
	InsertSwipe(ctx context.Context, rec *SwipeRecord) error
	LatestSwipeByActor(ctx context.Context, actorID int64) (*SwipeRecord, error)
	MarkSwipeRewound(ctx context.Context, id int64) error
	DeleteSwipesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Interest marks (current state, one row per ordered pair)
	UpsertInterestMark(ctx context.Context, mark *InterestMark) error
	GetInterestMark(ctx context.Context, actorID, targetID int64) (*InterestMark, error)
	DeleteInterestMark(ctx context.Context, actorID, targetID int64) error
	CountLikersOf(ctx context.Context, userID int64) (int64, error)

	// Matches (canonical pair ordering)
	CreateMatch(ctx context.Context, match *Match) (bool, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)
	GetMatchByPair(ctx context.Context, u1, u2 int64) (*Match, error)
	UpdateMatch(ctx context.Context, match *Match) error
	DeleteMatch(ctx context.Context, id int64) error
	ListMatchesForUser(ctx context.Context, userID int64, activeOnly bool) ([]*Match, error)
	SweepExpiredMatches(ctx context.Context, now time.Time) (int64, error)

	// Candidate pool (store-side half of the filter pipeline)
	FindCandidates(ctx context.Context, requesterID int64, f *CandidateFilter) ([]*profile.Profile, error)

	// Aggregates for the admin surface
	Stats(ctx context.Context) (*Stats, error)
}

// postgresRepository implements Repository using PostgreSQL. q is the
// active queryer: the root connection pool, or a transaction inside InTx.
type postgresRepository struct {
	q  sqlx.ExtContext
	db *sqlx.DB // nil inside a transaction
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{q: db, db: db}
}

func (r *postgresRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.db == nil {
		// Already transactional; nested units join the outer one.
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&postgresRepository{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Swipe log

func (r *postgresRepository) InsertSwipe(ctx context.Context, rec *SwipeRecord) error {
	query := `
		INSERT INTO swipe_records (
			actor_id, target_id, decision, device_id, session_id, app_version
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.q.QueryRowxContext(
		ctx, query,
		rec.ActorID, rec.TargetID, rec.Decision,
		rec.DeviceID, rec.SessionID, rec.AppVersion,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert swipe: %w", err)
	}

	return nil
}

func (r *postgresRepository) LatestSwipeByActor(ctx context.Context, actorID int64) (*SwipeRecord, error) {
	var rec SwipeRecord
	query := `
		SELECT id, actor_id, target_id, decision, device_id, session_id,
		       app_version, rewound, created_at
		FROM swipe_records
		WHERE actor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	err := sqlx.GetContext(ctx, r.q, &rec, query, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest swipe: %w", err)
	}

	return &rec, nil
}

func (r *postgresRepository) MarkSwipeRewound(ctx context.Context, id int64) error {
	query := `UPDATE swipe_records SET rewound = TRUE WHERE id = $1 AND rewound = FALSE`

	res, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark swipe rewound: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.InvalidState("swipe already rewound")
	}

	return nil
}

func (r *postgresRepository) DeleteSwipesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM swipe_records WHERE created_at < $1`

	res, err := r.q.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old swipes: %w", err)
	}

	return res.RowsAffected()
}

// Interest marks

func (r *postgresRepository) UpsertInterestMark(ctx context.Context, mark *InterestMark) error {
	query := `
		INSERT INTO interest_marks (actor_id, target_id, decision, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (actor_id, target_id)
		DO UPDATE SET decision = EXCLUDED.decision, updated_at = NOW()
		RETURNING updated_at`

	err := r.q.QueryRowxContext(ctx, query, mark.ActorID, mark.TargetID, mark.Decision).
		Scan(&mark.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert interest mark: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetInterestMark(ctx context.Context, actorID, targetID int64) (*InterestMark, error) {
	var mark InterestMark
	query := `
		SELECT actor_id, target_id, decision, updated_at
		FROM interest_marks
		WHERE actor_id = $1 AND target_id = $2`

	err := sqlx.GetContext(ctx, r.q, &mark, query, actorID, targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interest mark: %w", err)
	}

	return &mark, nil
}

func (r *postgresRepository) DeleteInterestMark(ctx context.Context, actorID, targetID int64) error {
	query := `DELETE FROM interest_marks WHERE actor_id = $1 AND target_id = $2`

	res, err := r.q.ExecContext(ctx, query, actorID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete interest mark: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("no interest mark for pair (%d, %d)", actorID, targetID)
	}

	return nil
}

func (r *postgresRepository) CountLikersOf(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM interest_marks
		WHERE target_id = $1 AND decision = 'LIKE'`

	err := sqlx.GetContext(ctx, r.q, &count, query, userID)
	return count, err
}

// Matches

// CreateMatch inserts a new match row in canonical order. Returns false
// when a row for the pair already exists (lost race or prior match);
// callers re-read and decide between reactivation and AlreadyExists.
func (r *postgresRepository) CreateMatch(ctx context.Context, match *Match) (bool, error) {
	match.User1ID, match.User2ID = canonicalPair(match.User1ID, match.User2ID)

	query := `
		INSERT INTO matches (user1_id, user2_id, source, is_active, matched_at, expires_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id`

	err := r.q.QueryRowxContext(
		ctx, query,
		match.User1ID, match.User2ID, match.Source, match.MatchedAt, match.ExpiresAt,
	).Scan(&match.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create match: %w", err)
	}

	match.IsActive = true
	return true, nil
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var match Match
	query := `
		SELECT id, user1_id, user2_id, source, is_active, matched_at, expires_at
		FROM matches WHERE id = $1`

	err := sqlx.GetContext(ctx, r.q, &match, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("match %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return &match, nil
}

func (r *postgresRepository) GetMatchByPair(ctx context.Context, u1, u2 int64) (*Match, error) {
	lo, hi := canonicalPair(u1, u2)

	var match Match
	query := `
		SELECT id, user1_id, user2_id, source, is_active, matched_at, expires_at
		FROM matches WHERE user1_id = $1 AND user2_id = $2`

	err := sqlx.GetContext(ctx, r.q, &match, query, lo, hi)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}

	return &match, nil
}

func (r *postgresRepository) UpdateMatch(ctx context.Context, match *Match) error {
	query := `
		UPDATE matches
		SET source = $2, is_active = $3, matched_at = $4, expires_at = $5
		WHERE id = $1`

	res, err := r.q.ExecContext(
		ctx, query,
		match.ID, match.Source, match.IsActive, match.MatchedAt, match.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("match %d not found", match.ID)
	}

	return nil
}

func (r *postgresRepository) DeleteMatch(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("match %d not found", id)
	}

	return nil
}

func (r *postgresRepository) ListMatchesForUser(ctx context.Context, userID int64, activeOnly bool) ([]*Match, error) {
	query := `
		SELECT id, user1_id, user2_id, source, is_active, matched_at, expires_at
		FROM matches
		WHERE (user1_id = $1 OR user2_id = $1)`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY matched_at DESC`

	var matches []*Match
	if err := sqlx.SelectContext(ctx, r.q, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}

func (r *postgresRepository) SweepExpiredMatches(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE matches
		SET is_active = FALSE
		WHERE is_active = TRUE AND expires_at < $1`

	res, err := r.q.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired matches: %w", err)
	}

	return res.RowsAffected()
}

// Candidate pool

// FindCandidates runs the store-side filters: exclude the requester,
// inactive accounts, anyone already decided on, and blocks in either
// direction. Mutual preference checks happen in the service.
func (r *postgresRepository) FindCandidates(ctx context.Context, requesterID int64, f *CandidateFilter) ([]*profile.Profile, error) {
	query := `
		SELECT u.id AS user_id, u.username, u.display_name, u.bio, u.birth_date,
		       u.gender, u.latitude, u.longitude, u.interests,
		       u.smoking, u.drinking, u.religion,
		       u.preferred_gender, u.preferred_min_age, u.preferred_max_age,
		       u.preferred_max_distance_km,
		       u.last_active, u.created_at
		FROM users u
		WHERE u.id <> $1
		  AND u.status = 'active'
		  AND NOT EXISTS (
			  SELECT 1 FROM interest_marks im
			  WHERE im.actor_id = $1 AND im.target_id = u.id
		  )
		  AND NOT EXISTS (
			  SELECT 1 FROM blocked_users b
			  WHERE (b.user_id = $1 AND b.blocked_id = u.id)
			     OR (b.user_id = u.id AND b.blocked_id = $1)
		  )`

	args := []interface{}{requesterID}
	if f.Gender != "" && f.Gender != "any" {
		args = append(args, f.Gender)
		query += fmt.Sprintf(" AND u.gender = $%d", len(args))
	}

	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY u.last_active DESC LIMIT $%d", len(args))

	rows, err := r.q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*profile.Profile
	for rows.Next() {
		var p profile.Profile
		if err := rows.StructScan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, &p)
	}

	return candidates, rows.Err()
}

// Aggregates

func (r *postgresRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{CollectedAt: time.Now()}

	swipeQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN decision IN ('LIKE', 'SUPER_LIKE') THEN 1 END) AS likes,
			COUNT(CASE WHEN rewound THEN 1 END) AS rewound
		FROM swipe_records`
	err := r.q.QueryRowxContext(ctx, swipeQuery).
		Scan(&stats.TotalSwipes, &stats.TotalLikes, &stats.TotalRewinds)
	if err != nil {
		return nil, fmt.Errorf("failed to collect swipe stats: %w", err)
	}

	matchQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN is_active THEN 1 END) AS active
		FROM matches`
	err = r.q.QueryRowxContext(ctx, matchQuery).
		Scan(&stats.TotalMatches, &stats.ActiveMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to collect match stats: %w", err)
	}

	return stats, nil
}
