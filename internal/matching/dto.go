// internal/matching/dto.go
package matching

// DTOs for API requests/responses

type RecordSwipeDTO struct {
	TargetID   int64   `json:"target_id" validate:"required"`
	Decision   string  `json:"decision" validate:"required,oneof=LIKE DISLIKE SUPER_LIKE PASS"`
	DeviceID   string  `json:"device_id" validate:"required,uuid4"`
	SessionID  *string `json:"session_id,omitempty" validate:"omitempty,uuid4"`
	AppVersion string  `json:"app_version,omitempty" validate:"omitempty,max=32"`
}

type CreateMatchDTO struct {
	UserID int64  `json:"user_id" validate:"required"`
	Source string `json:"source,omitempty" validate:"omitempty,oneof=swipe hotpick admin"`
}

type ExtendMatchDTO struct {
	Days int `json:"days" validate:"required,min=1,max=90"`
}

type LikeCountResponse struct {
	UserID int64 `json:"user_id"`
	Count  int64 `json:"count"`
}

type MatchCheckResponse struct {
	UserID  int64 `json:"user_id"`
	Matched bool  `json:"matched"`
}

type MutualLikeResponse struct {
	UserID int64 `json:"user_id"`
	Mutual bool  `json:"mutual"`
}

type CompatibilityResponse struct {
	UserID  int64                 `json:"user_id"`
	Score   float64               `json:"score"`
	Factors *CompatibilityFactors `json:"factors,omitempty"`
}
