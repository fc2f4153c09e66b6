//	@title			KunTV API
//	@version		1.0
//	@description	Catalog backend for KunTV — films, series and multi-account media storage.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
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

	"github.com/kuntv/service/internal/auth"
	"github.com/kuntv/service/internal/catalog"
	"github.com/kuntv/service/internal/config"
	"github.com/kuntv/service/internal/db"
	"github.com/kuntv/service/internal/imagehost"
	appMiddleware "github.com/kuntv/service/internal/middleware"
	"github.com/kuntv/service/internal/storage"
	"github.com/kuntv/service/internal/transcode"

	_ "github.com/kuntv/service/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration invalid: %v", err)
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	accounts := make([]storage.Account, 0, len(cfg.StorageAccounts))
	for _, a := range cfg.StorageAccounts {
		accounts = append(accounts, storage.Account{
			ID:      a.Bucket,
			KeyID:   a.KeyID,
			AppKey:  a.AppKey,
			Ceiling: cfg.CapacityCeiling,
		})
	}
	registry, err := storage.NewRegistry(cfg.StorageEndpoint, cfg.StorageRegion, cfg.StorageDomain, accounts)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	media := storage.NewManager(registry, cfg.SignedURLTTL, cfg.StorageTimeout, cfg.UploadTimeout)

	covers, err := imagehost.NewCloudinary(cfg.ImageAccounts)
	if err != nil {
		log.Fatalf("image hosting init failed: %v", err)
	}

	var encoder catalog.VideoEncoder
	if cfg.TranscodeEnabled {
		encoder = transcode.NewFFmpeg(cfg.FFmpegPath)
		log.Printf("transcoding enabled (ffmpeg at %s)", cfg.FFmpegPath)
	}

	// Wire dependencies: repository → service → handler
	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, media, covers, encoder)
	catalogHandler := catalog.NewHandler(catalogSvc)

	authSvc := auth.NewService(cfg)
	authHandler := auth.NewHandler(authSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoint
		r.Post("/auth/login", authHandler.Login)

		// Authenticated catalog reads
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

			r.Get("/collections", catalogHandler.ListCollections)
			r.Get("/sections", catalogHandler.ListSections)
			r.Get("/sections/{id}", catalogHandler.GetSection)
			r.Get("/seasons", catalogHandler.ListSeasons)
			r.Get("/videos", catalogHandler.ListVideos)
			r.Get("/videos/{id}", catalogHandler.GetVideo)
			r.Get("/films", catalogHandler.ListFilms)
			r.Get("/films/{id}", catalogHandler.GetFilm)

			// Admin-only mutations
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)

				r.Post("/sections", catalogHandler.CreateSection)
				r.Patch("/sections/{id}", catalogHandler.UpdateSection)
				r.Delete("/sections/{id}", catalogHandler.DeleteSection)

				r.Post("/seasons", catalogHandler.CreateSeason)
				r.Patch("/seasons/{id}", catalogHandler.UpdateSeason)
				r.Delete("/seasons/{id}", catalogHandler.DeleteSeason)

				r.Post("/videos", catalogHandler.CreateVideo)
				r.Patch("/videos/{id}", catalogHandler.UpdateVideo)
				r.Delete("/videos/{id}", catalogHandler.DeleteVideo)

				r.Post("/films", catalogHandler.CreateFilm)
				r.Patch("/films/{id}", catalogHandler.UpdateFilm)
				r.Delete("/films/{id}", catalogHandler.DeleteFilm)
			})
		})
	})

	// No global read/write timeout: media uploads stream through the request
	// body for minutes. Provider calls carry their own timeouts.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage accounts=%d)", cfg.Port, cfg.AppEnv, len(cfg.StorageAccounts))
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
