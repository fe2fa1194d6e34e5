//	@title			Blogsite API
//	@version		1.0
//	@description	Blog post CRUD API with optional image uploads.
//
//	@host		localhost:8080
//	@BasePath	/api

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

	"github.com/blogsite/service/internal/config"
	"github.com/blogsite/service/internal/db"
	appMiddleware "github.com/blogsite/service/internal/middleware"
	"github.com/blogsite/service/internal/post"
	"github.com/blogsite/service/internal/storage"

	_ "github.com/blogsite/service/docs/swagger"
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

	blobs, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("image storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	postRepo := post.NewRepository(pool)
	postSvc := post.NewService(postRepo, blobs)
	postHandler := post.NewHandler(postSvc)

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

	// Liveness probes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("API Running..."))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Uploaded images are served back directly when stored on local disk.
	if cfg.StorageDriver == "local" {
		fs := http.StripPrefix(cfg.UploadPublicPrefix, http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get(cfg.UploadPublicPrefix+"/*", fs.ServeHTTP)
	}

	r.Mount("/api/posts", postHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.AppEnv, cfg.StorageDriver)
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

// newStorage picks the image storage backend from configuration. The choice
// is fixed at startup; the rest of the process only sees storage.Storage.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewMinio(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageFolder,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
	default:
		return storage.NewLocal(cfg.UploadDir, cfg.UploadPublicPrefix)
	}
}
