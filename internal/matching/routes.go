package matching

import (
	"github.com/gorilla/mux"

	"github.com/kolade-dev/heartlink-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Swipes
	api.HandleFunc("/swipes", handler.RecordSwipe).Methods("POST")
	api.HandleFunc("/swipes/rewind", handler.RewindLastSwipe).Methods("POST")

	// Likes
	api.HandleFunc("/likes/count", handler.GetLikeCount).Methods("GET")
	api.HandleFunc("/likes/mutual/{userId}", handler.CheckMutualLike).Methods("GET")

	// Feed
	api.HandleFunc("/feed", handler.GetFeed).Methods("GET")
	api.HandleFunc("/feed/nearby", handler.GetFeedNearby).Methods("GET")
	api.HandleFunc("/feed/age", handler.GetFeedByAge).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")

	// Matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches", handler.CreateMatch).Methods("POST")
	api.HandleFunc("/matches/{id}/unmatch", handler.Unmatch).Methods("POST")
	api.HandleFunc("/matches/{id}/extend", handler.ExtendMatch).Methods("POST")
	api.HandleFunc("/matches/check/{userId}", handler.CheckMatch).Methods("GET")

	// Realtime match events
	if hub != nil {
		api.HandleFunc("/ws", hub.ServeWS).Methods("GET")
	}

	// Admin
	admin := router.PathPrefix("/api/v1/admin/matching").Subrouter()
	admin.Use(authMiddleware.Authenticate)
	admin.HandleFunc("/stats", handler.GetStats).Methods("GET")
	admin.HandleFunc("/matches/{id}", handler.AdminDeleteMatch).Methods("DELETE")
	admin.HandleFunc("/marks/{actorId}/{targetId}", handler.AdminResetMark).Methods("DELETE")
}
