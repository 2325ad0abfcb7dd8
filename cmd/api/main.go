//	@title			Pulse Media API
//	@version		1.0
//	@description	Media ingestion gateway for Pulse — profile pictures, room pictures, and attachments.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/pulse-messenger/media-service/internal/config"
	"github.com/pulse-messenger/media-service/internal/db"
	"github.com/pulse-messenger/media-service/internal/media"
	appMiddleware "github.com/pulse-messenger/media-service/internal/middleware"
	"github.com/pulse-messenger/media-service/internal/room"
	"github.com/pulse-messenger/media-service/internal/storage"
	"github.com/pulse-messenger/media-service/internal/user"

	_ "github.com/pulse-messenger/media-service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
		cfg.Upload.CacheMaxAge,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repositories → pipeline → handler
	userRepo := user.NewRepository(pool)
	roomRepo := room.NewRepository(pool)
	mediaSvc := media.NewService(store, userRepo, roomRepo, cfg.Upload)
	mediaHandler := media.NewHandler(mediaSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check: liveness plus object-store readiness
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := mediaSvc.Healthy(req.Context()); err != nil {
			log.Printf("health: storage not ready: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"storage unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/media", func(r chi.Router) {
		// Public read endpoints
		r.Get("/profilePics/{userID}", mediaHandler.GetProfilePic)
		r.Get("/uploads/{userID}/{fileName}", mediaHandler.GetUpload)

		// Authenticated upload endpoints
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret, userRepo))
			r.Post("/profilePics", mediaHandler.UploadProfilePic)
			r.Post("/roomPic/{roomID}", mediaHandler.UploadRoomPic)
			r.Post("/uploads", mediaHandler.UploadFiles)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute, // large attachment uploads
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
