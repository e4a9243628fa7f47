package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/database"
	"github.com/sealbox/sealbox/internal/handlers"
	"github.com/sealbox/sealbox/internal/logging"
	"github.com/sealbox/sealbox/internal/middleware"
	"github.com/sealbox/sealbox/internal/services"
	"github.com/sealbox/sealbox/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("Starting Sealbox server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	store, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter)
	emailService := services.NewEmailService(&cfg.Email, dbAdapter)
	friendService := services.NewFriendService(dbAdapter)
	capsuleService := services.NewCapsuleService(dbAdapter, friendService)
	notificationService := services.NewNotificationService(dbAdapter)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, emailService, cfg.Server.Secure)
	profileHandler := handlers.NewProfileHandler(userService, authService, friendService, capsuleService, store)
	friendHandler := handlers.NewFriendHandler(friendService, userService, notificationService)
	capsuleHandler := handlers.NewCapsuleHandler(capsuleService, friendService, userService, notificationService, emailService, store)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)
	authRateLimiter := middleware.NewAuthRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", authRateLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/verify-email", authRateLimiter.Limit(http.HandlerFunc(authHandler.VerifyEmail)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/auth/confirm-email", requireAuth(http.HandlerFunc(authHandler.ConfirmEmail)))
	mux.Handle("POST /api/auth/resend-verification", requireAuth(http.HandlerFunc(authHandler.ResendVerification)))

	// Profile endpoints
	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/profile", requireAuth(http.HandlerFunc(profileHandler.Update)))
	mux.Handle("PUT /api/profile/privacy", requireAuth(http.HandlerFunc(profileHandler.UpdatePrivacy)))
	mux.Handle("POST /api/profile/image", requireAuth(http.HandlerFunc(profileHandler.UploadImage)))
	mux.Handle("GET /api/profile/stats", requireAuth(http.HandlerFunc(profileHandler.Stats)))

	// Friend endpoints
	mux.Handle("GET /api/users", requireAuth(http.HandlerFunc(friendHandler.Browse)))
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.ListPending)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/decline", requireAuth(http.HandlerFunc(friendHandler.DeclineRequest)))
	mux.Handle("DELETE /api/friends/{id}", requireAuth(http.HandlerFunc(friendHandler.RemoveFriend)))

	// Capsule endpoints
	mux.Handle("POST /api/capsules", requireAuth(http.HandlerFunc(capsuleHandler.Create)))
	mux.Handle("GET /api/capsules", requireAuth(http.HandlerFunc(capsuleHandler.List)))
	mux.Handle("GET /api/capsules/shared", requireAuth(http.HandlerFunc(capsuleHandler.ListShared)))
	mux.Handle("POST /api/capsules/images", requireAuth(http.HandlerFunc(capsuleHandler.UploadImage)))
	mux.Handle("GET /api/capsules/{id}", requireAuth(http.HandlerFunc(capsuleHandler.Get)))
	mux.Handle("POST /api/capsules/{id}/accept", requireAuth(http.HandlerFunc(capsuleHandler.AcceptShare)))
	mux.Handle("PUT /api/capsules/{id}/image-comment", requireAuth(http.HandlerFunc(capsuleHandler.UpdateImageComment)))
	mux.Handle("PUT /api/shares/{id}", requireAuth(http.HandlerFunc(capsuleHandler.UpdateShareStatus)))
	mux.Handle("GET /api/users/{id}/capsules", requireAuth(http.HandlerFunc(capsuleHandler.ListForUser)))

	// Notification endpoints
	mux.Handle("GET /api/notifications", requireAuth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /api/notifications/unread", requireAuth(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("PUT /api/notifications/{id}/read", requireAuth(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("PUT /api/notifications/read-all", requireAuth(http.HandlerFunc(notificationHandler.MarkAllRead)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
