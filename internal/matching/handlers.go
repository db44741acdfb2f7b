// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kolade-dev/heartlink-backend/internal/auth"
	"github.com/kolade-dev/heartlink-backend/internal/common/apperrors"
	"github.com/kolade-dev/heartlink-backend/internal/common/utils"
)

type Handler struct {
	service          Service
	admin            *AdminService
	defaultFeedLimit int
}

func NewHandler(service Service, admin *AdminService, defaultFeedLimit int) *Handler {
	return &Handler{
		service:          service,
		admin:            admin,
		defaultFeedLimit: defaultFeedLimit,
	}
}

// respondError maps domain errors onto HTTP statuses. Unknown kinds
// collapse to a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		utils.RespondWithError(w, status, "Internal server error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}

// Swipes

func (h *Handler) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var dto RecordSwipeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.RecordSwipe(r.Context(), &SwipeInput{
		ActorID:    userID,
		TargetID:   dto.TargetID,
		Decision:   dto.Decision,
		DeviceID:   dto.DeviceID,
		SessionID:  dto.SessionID,
		AppVersion: dto.AppVersion,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) RewindLastSwipe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	rec, err := h.service.RewindLastSwipe(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rec)
}

// Likes

func (h *Handler) GetLikeCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	count, err := h.service.CountLikesReceived(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, LikeCountResponse{UserID: userID, Count: count})
}

func (h *Handler) CheckMutualLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	otherID, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	mutual, err := h.service.IsMutualLike(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, MutualLikeResponse{UserID: otherID, Mutual: mutual})
}

// Feed

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit := h.queryLimit(r)

	candidates, err := h.service.FindCandidates(r.Context(), userID, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetFeedNearby(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit := h.queryLimit(r)

	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "radius_km is required")
		return
	}

	candidates, err := h.service.FindCandidatesNearby(r.Context(), userID, radius, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetFeedByAge(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit := h.queryLimit(r)

	minAge, err := strconv.Atoi(r.URL.Query().Get("min_age"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "min_age is required")
		return
	}
	maxAge, err := strconv.Atoi(r.URL.Query().Get("max_age"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "max_age is required")
		return
	}

	candidates, err := h.service.FindCandidatesByAge(r.Context(), userID, minAge, maxAge, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	otherID, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	score, factors, err := h.service.GetCompatibilityScore(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, CompatibilityResponse{
		UserID:  otherID,
		Score:   score,
		Factors: factors,
	})
}

// Matches

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	matches, err := h.service.ListMatches(r.Context(), userID, activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var dto CreateMatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.CreateOrReactivateMatch(r.Context(), userID, dto.UserID, dto.Source)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, match)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	matchID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.requireParticipant(w, r, matchID, userID); err != nil {
		return
	}

	if err := h.service.DeactivateMatch(r.Context(), matchID); err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Unmatched successfully")
}

func (h *Handler) ExtendMatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	matchID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.requireParticipant(w, r, matchID, userID); err != nil {
		return
	}

	var dto ExtendMatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.ExtendMatchExpiry(r.Context(), matchID, dto.Days)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) CheckMatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	otherID, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	matched, err := h.service.AreUsersMatched(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, MatchCheckResponse{UserID: otherID, Matched: matched})
}

// Admin

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) AdminDeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.admin.DeleteMatch(r.Context(), matchID); err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Match deleted")
}

func (h *Handler) AdminResetMark(w http.ResponseWriter, r *http.Request) {
	actorID, err := pathID(r, "actorId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid actor ID")
		return
	}
	targetID, err := pathID(r, "targetId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid target ID")
		return
	}

	if err := h.admin.ResetInterestMark(r.Context(), actorID, targetID); err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Interest mark reset")
}

// Helpers

func (h *Handler) queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return h.defaultFeedLimit
	}
	return limit
}

// requireParticipant rejects match operations by users outside the
// pair. It writes the response itself on failure.
func (h *Handler) requireParticipant(w http.ResponseWriter, r *http.Request, matchID, userID int64) error {
	match, err := h.service.GetMatch(r.Context(), matchID)
	if err != nil {
		respondError(w, err)
		return err
	}
	if !match.Involves(userID) {
		err := apperrors.NotFoundf("match %d not found", matchID)
		respondError(w, err)
		return err
	}
	return nil
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}
