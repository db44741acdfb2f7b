// internal/matching/admin.go

package matching

import (
	"context"
	"time"
)

// Stats is the aggregate snapshot served to the admin surface.
type Stats struct {
	TotalSwipes   int64     `json:"total_swipes"`
	TotalLikes    int64     `json:"total_likes"`
	TotalRewinds  int64     `json:"total_rewinds"`
	TotalMatches  int64     `json:"total_matches"`
	ActiveMatches int64     `json:"active_matches"`
	CollectedAt   time.Time `json:"collected_at"`
}

// AdminService exposes the moderation operations that bypass the normal
// lifecycle rules. Routes mounting it sit behind admin auth.
type AdminService struct {
	repo Repository
}

func NewAdminService(repo Repository) *AdminService {
	return &AdminService{repo: repo}
}

func (a *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	return a.repo.Stats(ctx)
}

// DeleteMatch removes the match row outright, unlike DeactivateMatch
// which keeps it for reactivation.
func (a *AdminService) DeleteMatch(ctx context.Context, matchID int64) error {
	if err := a.repo.DeleteMatch(ctx, matchID); err != nil {
		return err
	}

	RecordMatchEvent("deleted")
	return nil
}

// ResetInterestMark clears a decision so the target shows up in the
// actor's feed again. Used by support when a user reports a misclick
// that rewind cannot fix.
func (a *AdminService) ResetInterestMark(ctx context.Context, actorID, targetID int64) error {
	return a.repo.DeleteInterestMark(ctx, actorID, targetID)
}
