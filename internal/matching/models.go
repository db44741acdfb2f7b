// internal/matching/models.go

package matching

import (
	"time"

	"github.com/kolade-dev/heartlink-backend/internal/common/apperrors"
)

// Decision is a single swipe choice.
type Decision string

const (
	DecisionLike      Decision = "LIKE"
	DecisionDislike   Decision = "DISLIKE"
	DecisionSuperLike Decision = "SUPER_LIKE"
	DecisionPass      Decision = "PASS"
)

// ParseDecision validates a wire-level decision string.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionLike, DecisionDislike, DecisionSuperLike, DecisionPass:
		return Decision(s), nil
	default:
		return "", apperrors.InvalidArgumentf("unknown decision %q", s)
	}
}

// Positive reports whether the decision counts as a like for
// mutual-interest detection. SUPER_LIKE folds into LIKE here.
func (d Decision) Positive() bool {
	return d == DecisionLike || d == DecisionSuperLike
}

// Folded reduces the four audit-log decisions to the two-valued
// interest mark: LIKE for like-class, DISLIKE for everything else.
func (d Decision) Folded() Decision {
	if d.Positive() {
		return DecisionLike
	}
	return DecisionDislike
}

// SwipeRecord is one row of the append-only swipe audit log.
// Rows are never updated except to set Rewound, never deleted except
// by retention cleanup.
type SwipeRecord struct {
	ID         int64     `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	TargetID   int64     `json:"target_id" db:"target_id"`
	Decision   Decision  `json:"decision" db:"decision"`
	DeviceID   string    `json:"device_id" db:"device_id"`
	SessionID  *string   `json:"session_id,omitempty" db:"session_id"`
	AppVersion string    `json:"app_version" db:"app_version"`
	Rewound    bool      `json:"rewound" db:"rewound"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// InterestMark is the current effective decision for an ordered pair.
// At most one row exists per (actor, target); repeat swipes overwrite.
type InterestMark struct {
	ActorID   int64     `json:"actor_id" db:"actor_id"`
	TargetID  int64     `json:"target_id" db:"target_id"`
	Decision  Decision  `json:"decision" db:"decision"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Match is the bidirectional, time-bounded record unlocking
// conversation between two mutually-liked users. The pair is stored
// canonically with User1ID < User2ID so lookups are direction-independent.
type Match struct {
	ID        int64     `json:"id" db:"id"`
	User1ID   int64     `json:"user1_id" db:"user1_id"`
	User2ID   int64     `json:"user2_id" db:"user2_id"`
	Source    string    `json:"source" db:"source"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	MatchedAt time.Time `json:"matched_at" db:"matched_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the match window has passed at the given
// instant, regardless of the active flag.
func (m *Match) Expired(now time.Time) bool {
	return !m.ExpiresAt.After(now)
}

// Involves reports whether the given user is one side of the match.
func (m *Match) Involves(userID int64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// canonicalPair normalizes an unordered pair to (smaller, larger).
// Every match read and write goes through this ordering.
func canonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
