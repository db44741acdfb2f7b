// internal/matching/service.go

package matching

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kolade-dev/heartlink-backend/internal/common/apperrors"
	"github.com/kolade-dev/heartlink-backend/internal/config"
	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

// minFeedScore is the floor under which candidates are dropped from the
// ranked feed entirely rather than shown at the bottom.
const minFeedScore = 0.1

// matchSourceSwipe marks matches created by the mutual-like path.
const matchSourceSwipe = "swipe"

// Notifier receives match lifecycle events after they commit. The
// websocket hub implements it; a nil notifier is silently skipped.
type Notifier interface {
	OnMatchCreated(matchID, user1ID, user2ID int64)
}

// SwipeInput carries one swipe from the transport layer.
type SwipeInput struct {
	ActorID    int64
	TargetID   int64
	Decision   string
	DeviceID   string
	SessionID  *string
	AppVersion string
}

// SwipeResult reports what a swipe did: the audit record always, plus
// the match when the swipe completed or revived a mutual like.
type SwipeResult struct {
	Record   *SwipeRecord `json:"record"`
	Match    *Match       `json:"match,omitempty"`
	NewMatch bool         `json:"new_match"`
}

// ScoredCandidate is one entry of the ranked feed.
type ScoredCandidate struct {
	Profile *profile.Profile      `json:"profile"`
	Score   float64               `json:"score"`
	Factors *CompatibilityFactors `json:"factors,omitempty"`
}

// Service is the matching domain API.
type Service interface {
	RecordSwipe(ctx context.Context, in *SwipeInput) (*SwipeResult, error)
	RewindLastSwipe(ctx context.Context, actorID int64) (*SwipeRecord, error)

	IsMutualLike(ctx context.Context, user1ID, user2ID int64) (bool, error)
	CountLikesReceived(ctx context.Context, userID int64) (int64, error)

	GetMatch(ctx context.Context, matchID int64) (*Match, error)
	CreateOrReactivateMatch(ctx context.Context, user1ID, user2ID int64, source string) (*Match, error)
	DeactivateMatch(ctx context.Context, matchID int64) error
	ExtendMatchExpiry(ctx context.Context, matchID int64, days int) (*Match, error)
	AreUsersMatched(ctx context.Context, user1ID, user2ID int64) (bool, error)
	ListMatches(ctx context.Context, userID int64, activeOnly bool) ([]*Match, error)
	SweepExpiredMatches(ctx context.Context) (int64, error)

	FindCandidates(ctx context.Context, requesterID int64, limit int) ([]*ScoredCandidate, error)
	FindCandidatesNearby(ctx context.Context, requesterID int64, radiusKm float64, limit int) ([]*ScoredCandidate, error)
	FindCandidatesByAge(ctx context.Context, requesterID int64, minAge, maxAge, limit int) ([]*ScoredCandidate, error)
	GetCompatibilityScore(ctx context.Context, user1ID, user2ID int64) (float64, *CompatibilityFactors, error)

	CleanupSwipeLog(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	directory profile.Directory
	cache     *Cache
	notifier  Notifier
	cfg       *config.Config
	now       func() time.Time
}

// NewService creates a new matching service. cache and notifier may be nil.
func NewService(repo Repository, directory profile.Directory, cache *Cache, notifier Notifier, cfg *config.Config) Service {
	return &service{
		repo:      repo,
		directory: directory,
		cache:     cache,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Swipes

func (s *service) RecordSwipe(ctx context.Context, in *SwipeInput) (*SwipeResult, error) {
	if in.ActorID == in.TargetID {
		return nil, apperrors.InvalidArgument("cannot swipe on yourself")
	}

	decision, err := ParseDecision(in.Decision)
	if err != nil {
		return nil, err
	}

	if _, err := s.directory.GetUserByID(ctx, in.ActorID); err != nil {
		return nil, err
	}
	target, err := s.directory.GetUserByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive() {
		return nil, apperrors.InvalidStatef("user %d is not accepting swipes", in.TargetID)
	}

	// The feed excludes blocked pairs, but the feed can be stale; the
	// swipe path re-validates in both directions.
	for _, pair := range [2][2]int64{{in.ActorID, in.TargetID}, {in.TargetID, in.ActorID}} {
		blocked, err := s.directory.IsBlocked(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperrors.InvalidStatef("users %d and %d cannot interact", in.ActorID, in.TargetID)
		}
	}

	if in.DeviceID == "" {
		return nil, apperrors.InvalidArgument("device_id is required")
	}
	if _, err := uuid.Parse(in.DeviceID); err != nil {
		return nil, apperrors.InvalidArgumentf("malformed device ID %s", in.DeviceID)
	}
	known, err := s.directory.DeviceExists(ctx, in.DeviceID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, apperrors.InvalidArgumentf("unknown device %s", in.DeviceID)
	}
	if in.SessionID != nil {
		known, err := s.directory.SessionExists(ctx, *in.SessionID)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, apperrors.InvalidArgumentf("unknown or expired session %s", *in.SessionID)
		}
	}

	result := &SwipeResult{
		Record: &SwipeRecord{
			ActorID:    in.ActorID,
			TargetID:   in.TargetID,
			Decision:   decision,
			DeviceID:   in.DeviceID,
			SessionID:  in.SessionID,
			AppVersion: in.AppVersion,
		},
	}

	// The audit append, the mark upsert and the match transition commit
	// together; a reciprocal swipe racing this one lands on the unique
	// pair constraint and one side wins CreateMatch.
	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.InsertSwipe(ctx, result.Record); err != nil {
			return err
		}

		mark := &InterestMark{
			ActorID:  in.ActorID,
			TargetID: in.TargetID,
			Decision: decision.Folded(),
		}
		if err := tx.UpsertInterestMark(ctx, mark); err != nil {
			return err
		}

		if !decision.Positive() {
			return nil
		}

		reciprocal, err := tx.GetInterestMark(ctx, in.TargetID, in.ActorID)
		if err != nil {
			return err
		}
		if reciprocal == nil || !reciprocal.Decision.Positive() {
			return nil
		}

		match, created, err := s.transitionMatch(ctx, tx, in.ActorID, in.TargetID)
		if err != nil {
			return err
		}
		result.Match = match
		result.NewMatch = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordSwipe(decision)
	s.cache.InvalidateLikeCount(ctx, in.TargetID)

	if result.NewMatch {
		log.Printf("Match %d created between users %d and %d", result.Match.ID, result.Match.User1ID, result.Match.User2ID)
		if s.notifier != nil {
			s.notifier.OnMatchCreated(result.Match.ID, result.Match.User1ID, result.Match.User2ID)
		}
	}

	return result, nil
}

// transitionMatch moves the pair toward an active match inside the
// swipe transaction: create when absent, reactivate when dormant, leave
// an already-active match untouched.
func (s *service) transitionMatch(ctx context.Context, tx Repository, u1, u2 int64) (*Match, bool, error) {
	existing, err := tx.GetMatchByPair(ctx, u1, u2)
	if err != nil {
		return nil, false, err
	}

	now := s.now()

	if existing == nil {
		match := &Match{
			User1ID:   u1,
			User2ID:   u2,
			Source:    matchSourceSwipe,
			MatchedAt: now,
			ExpiresAt: now.Add(s.cfg.MatchTTL),
		}
		created, err := tx.CreateMatch(ctx, match)
		if err != nil {
			return nil, false, err
		}
		if created {
			RecordMatchEvent("created")
			return match, true, nil
		}
		// Lost the insert race; fall through to the re-read.
		existing, err = tx.GetMatchByPair(ctx, u1, u2)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, apperrors.InvalidStatef("match for pair (%d, %d) vanished", u1, u2)
		}
	}

	if existing.IsActive {
		return existing, false, nil
	}

	existing.IsActive = true
	existing.Source = matchSourceSwipe
	existing.MatchedAt = now
	existing.ExpiresAt = now.Add(s.cfg.MatchTTL)
	if err := tx.UpdateMatch(ctx, existing); err != nil {
		return nil, false, err
	}

	RecordMatchEvent("reactivated")
	return existing, true, nil
}

// RewindLastSwipe undoes the actor's most recent swipe in the audit
// log. The interest mark and any match the swipe produced stand; rewind
// only flags the record so analytics discount it.
func (s *service) RewindLastSwipe(ctx context.Context, actorID int64) (*SwipeRecord, error) {
	rec, err := s.repo.LatestSwipeByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.InvalidState("no swipe to rewind")
	}
	if rec.Rewound {
		return nil, apperrors.InvalidState("last swipe already rewound")
	}

	if err := s.repo.MarkSwipeRewound(ctx, rec.ID); err != nil {
		return nil, err
	}

	rec.Rewound = true
	RecordRewind()
	return rec, nil
}

// Likes

func (s *service) IsMutualLike(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	forward, err := s.repo.GetInterestMark(ctx, user1ID, user2ID)
	if err != nil {
		return false, err
	}
	if forward == nil || !forward.Decision.Positive() {
		return false, nil
	}

	backward, err := s.repo.GetInterestMark(ctx, user2ID, user1ID)
	if err != nil {
		return false, err
	}

	return backward != nil && backward.Decision.Positive(), nil
}

func (s *service) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	if count, ok := s.cache.GetLikeCount(ctx, userID); ok {
		return count, nil
	}

	count, err := s.repo.CountLikersOf(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.cache.SetLikeCount(ctx, userID, count)
	return count, nil
}

// Matches

func (s *service) GetMatch(ctx context.Context, matchID int64) (*Match, error) {
	return s.repo.GetMatch(ctx, matchID)
}

func (s *service) CreateOrReactivateMatch(ctx context.Context, user1ID, user2ID int64, source string) (*Match, error) {
	if user1ID == user2ID {
		return nil, apperrors.InvalidArgument("cannot match a user with themselves")
	}
	if source == "" {
		source = matchSourceSwipe
	}

	existing, err := s.repo.GetMatchByPair(ctx, user1ID, user2ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if existing != nil {
		if existing.IsActive {
			return nil, apperrors.AlreadyExistsf("users %d and %d are already matched", user1ID, user2ID)
		}
		// Reactivation trusts the original mutual like; it is not
		// re-verified against the current interest marks.
		existing.IsActive = true
		existing.Source = source
		existing.MatchedAt = now
		existing.ExpiresAt = now.Add(s.cfg.MatchTTL)
		if err := s.repo.UpdateMatch(ctx, existing); err != nil {
			return nil, err
		}
		RecordMatchEvent("reactivated")
		return existing, nil
	}

	mutual, err := s.IsMutualLike(ctx, user1ID, user2ID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return nil, apperrors.InvalidStatef("users %d and %d have not mutually liked each other", user1ID, user2ID)
	}

	match := &Match{
		User1ID:   user1ID,
		User2ID:   user2ID,
		Source:    source,
		MatchedAt: now,
		ExpiresAt: now.Add(s.cfg.MatchTTL),
	}
	created, err := s.repo.CreateMatch(ctx, match)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperrors.AlreadyExistsf("users %d and %d are already matched", user1ID, user2ID)
	}

	RecordMatchEvent("created")
	if s.notifier != nil {
		s.notifier.OnMatchCreated(match.ID, match.User1ID, match.User2ID)
	}

	return match, nil
}

// DeactivateMatch turns the match off. Deactivating an already inactive
// match is a no-op.
func (s *service) DeactivateMatch(ctx context.Context, matchID int64) error {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.IsActive {
		return nil
	}

	match.IsActive = false
	if err := s.repo.UpdateMatch(ctx, match); err != nil {
		return err
	}

	RecordMatchEvent("deactivated")
	return nil
}

func (s *service) ExtendMatchExpiry(ctx context.Context, matchID int64, days int) (*Match, error) {
	if days <= 0 {
		return nil, apperrors.InvalidArgument("extension must be a positive number of days")
	}

	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive {
		return nil, apperrors.InvalidStatef("match %d is not active", matchID)
	}

	match.ExpiresAt = match.ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
	if err := s.repo.UpdateMatch(ctx, match); err != nil {
		return nil, err
	}

	return match, nil
}

// AreUsersMatched reports whether the pair currently unlocks
// conversation: an active match whose window has not passed. A swept
// but not-yet-deactivated match does not count.
func (s *service) AreUsersMatched(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	match, err := s.repo.GetMatchByPair(ctx, user1ID, user2ID)
	if err != nil {
		return false, err
	}
	if match == nil {
		return false, nil
	}

	return match.IsActive && !match.Expired(s.now()), nil
}

func (s *service) ListMatches(ctx context.Context, userID int64, activeOnly bool) ([]*Match, error) {
	return s.repo.ListMatchesForUser(ctx, userID, activeOnly)
}

func (s *service) SweepExpiredMatches(ctx context.Context) (int64, error) {
	swept, err := s.repo.SweepExpiredMatches(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for i := int64(0); i < swept; i++ {
		RecordMatchEvent("expired")
	}

	return swept, nil
}

// Feed

func (s *service) FindCandidates(ctx context.Context, requesterID int64, limit int) ([]*ScoredCandidate, error) {
	return s.rankCandidates(ctx, requesterID, limit, nil)
}

func (s *service) FindCandidatesNearby(ctx context.Context, requesterID int64, radiusKm float64, limit int) ([]*ScoredCandidate, error) {
	if radiusKm <= 0 {
		return nil, apperrors.InvalidArgument("radius must be positive")
	}
	return s.rankCandidates(ctx, requesterID, limit, &Constraints{RadiusKm: &radiusKm})
}

func (s *service) FindCandidatesByAge(ctx context.Context, requesterID int64, minAge, maxAge, limit int) ([]*ScoredCandidate, error) {
	if minAge > maxAge {
		return nil, apperrors.InvalidArgumentf("invalid age band [%d, %d]", minAge, maxAge)
	}
	return s.rankCandidates(ctx, requesterID, limit, &Constraints{MinAge: &minAge, MaxAge: &maxAge})
}

func (s *service) rankCandidates(ctx context.Context, requesterID int64, limit int, c *Constraints) ([]*ScoredCandidate, error) {
	if limit <= 0 {
		return nil, apperrors.InvalidArgument("limit must be positive")
	}

	requester, err := s.directory.GetProfileByUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	filter := &CandidateFilter{Limit: s.cfg.CandidatePoolSize}
	if pref := requester.Pref(); pref != nil && pref.Gender != nil {
		filter.Gender = *pref.Gender
	}

	pool, err := s.repo.FindCandidates(ctx, requesterID, filter)
	if err != nil {
		return nil, err
	}

	scored := make([]*ScoredCandidate, 0, len(pool))
	for _, candidate := range pool {
		// Scoring a large pool is the one CPU-heavy loop; honor
		// cancellation between candidates and return nothing rather
		// than a partial ranking.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !eligiblePair(requester, candidate, c) {
			continue
		}

		score, factors := CompatibilityScore(requester, candidate)
		RecordCompatibilityScore(score)
		if score <= minFeedScore {
			continue
		}

		scored = append(scored, &ScoredCandidate{
			Profile: candidate,
			Score:   score,
			Factors: factors,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.UserID < scored[j].Profile.UserID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	RecordCandidatesReturned(len(scored))
	return scored, nil
}

// GetCompatibilityScore computes the pair score with its factor
// breakdown. The bare score is cached; a cache hit returns nil factors.
func (s *service) GetCompatibilityScore(ctx context.Context, user1ID, user2ID int64) (float64, *CompatibilityFactors, error) {
	if score, ok := s.cache.GetScore(ctx, user1ID, user2ID); ok {
		return score, nil, nil
	}

	p1, err := s.directory.GetProfileByUser(ctx, user1ID)
	if err != nil {
		return 0, nil, err
	}
	p2, err := s.directory.GetProfileByUser(ctx, user2ID)
	if err != nil {
		return 0, nil, err
	}

	score, factors := CompatibilityScore(p1, p2)
	s.cache.SetScore(ctx, user1ID, user2ID, score)
	RecordCompatibilityScore(score)

	return score, factors, nil
}

// Maintenance

func (s *service) CleanupSwipeLog(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.SwipeRetention)
	return s.repo.DeleteSwipesBefore(ctx, cutoff)
}
