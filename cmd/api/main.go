// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kolade-dev/heartlink-backend/internal/auth"
	"github.com/kolade-dev/heartlink-backend/internal/common/database"
	"github.com/kolade-dev/heartlink-backend/internal/config"
	"github.com/kolade-dev/heartlink-backend/internal/matching"
	"github.com/kolade-dev/heartlink-backend/internal/profile"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Heartlink Matching API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Connect to PostgreSQL
	log.Println("🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional)
	log.Println("📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Wire up the matching system
	log.Println("🧩 Step 6: Initializing matching system...")

	directory := profile.NewPostgresDirectory(db)
	matchingRepo := matching.NewPostgresRepository(db)
	matchingCache := matching.NewCache(redisClient, cfg.LikeCountTTL, cfg.ScoreTTL)

	hub := matching.NewHub()
	go hub.Run()

	matchingService := matching.NewService(matchingRepo, directory, matchingCache, hub, cfg)
	adminService := matching.NewAdminService(matchingRepo)
	matchingHandler := matching.NewHandler(matchingService, adminService, cfg.DefaultFeedLimit)

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	log.Println("✅ Matching system initialized")

	// 7. Start background jobs
	log.Println("⏰ Step 7: Starting scheduler...")
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	scheduler := matching.NewScheduler(matchingService, cfg.SweepInterval)
	scheduler.Start(schedCtx)
	log.Println("✅ Scheduler started")

	// 8. Build routes
	log.Println("🌐 Step 8: Registering routes...")
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(router, matchingHandler, hub, authMiddleware)
	log.Println("✅ Routes registered")

	// 9. Start the server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server failed:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited cleanly")
}

// runMigrations creates the matching schema when absent
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			bio TEXT,
			birth_date DATE NOT NULL,
			gender VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			interests TEXT[] NOT NULL DEFAULT '{}',
			smoking VARCHAR(20),
			drinking VARCHAR(20),
			religion VARCHAR(50),
			preferred_gender VARCHAR(20),
			preferred_min_age INTEGER,
			preferred_max_age INTEGER,
			preferred_max_distance_km DOUBLE PRECISION,
			last_active TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS devices (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			platform VARCHAR(20) NOT NULL,
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS blocked_users (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			blocked_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, blocked_id)
		)`,

		`CREATE TABLE IF NOT EXISTS swipe_records (
			id BIGSERIAL PRIMARY KEY,
			actor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			decision VARCHAR(16) NOT NULL,
			device_id UUID NOT NULL,
			session_id UUID,
			app_version VARCHAR(32) NOT NULL DEFAULT '',
			rewound BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swipe_records_actor_recent
			ON swipe_records (actor_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS interest_marks (
			actor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			decision VARCHAR(16) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (actor_id, target_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interest_marks_likers
			ON interest_marks (target_id) WHERE decision = 'LIKE'`,

		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			user1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source VARCHAR(20) NOT NULL DEFAULT 'swipe',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			matched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user1_id, user2_id),
			CHECK (user1_id < user2_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_active_expiry
			ON matches (is_active, expires_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","time":"%s"}`, time.Now().Format(time.RFC3339))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
