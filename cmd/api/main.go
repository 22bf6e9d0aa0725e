package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pet-adoption/internal/adapters/auth/jwtauth"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/platform/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/uploads"
	"pet-adoption/internal/router"
)

func main() {
	// .env es best-effort (dev); en deploy las vars vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	tokens, err := jwtauth.New(jwtauth.Config{
		Secret: cfg.JWTSecret,
		TTL:    time.Duration(cfg.JWTExpireMin) * time.Minute,
	})
	if err != nil {
		lg.Error("token service", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	store, err := uploads.New(cfg.UploadDir)
	if err != nil {
		lg.Error("uploads", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			lg.Error("postgres", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
	}

	r := router.New(router.Options{
		Verifier: tokens,
		Issuer:   tokens,
		DB:       db,
		Uploads:  store,
		Log:      lg,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": cfg.HTTPAddr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
