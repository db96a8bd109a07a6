package main

import (
	"context"
	"net/http"
	"os"

	"caption-cage/internal/config"
	"caption-cage/internal/db"
	"caption-cage/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	conn := openDatabase(cfg)
	srv := server.New(conn, cfg)
	if conn != nil {
		if err := srv.RestoreSessions(); err != nil {
			log.Error().Err(err).Msg("failed to restore sessions")
		}
	}
	srv.StartSweeper(context.Background())

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Info().Str("addr", addr).Msg("caption-cage server listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// openDatabase is best effort: without DATABASE_URL the server runs on the
// in-memory store alone.
func openDatabase(cfg config.Config) *gorm.DB {
	if os.Getenv("DATABASE_URL") == "" {
		log.Info().Msg("DATABASE_URL not set, running without persistence")
		return nil
	}
	conn, err := db.Open()
	if err != nil {
		log.Error().Err(err).Msg("failed to open database, running without persistence")
		return nil
	}
	if err := db.ConfigurePool(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeSeconds, cfg.DBConnMaxIdleTimeSeconds); err != nil {
		log.Error().Err(err).Msg("failed to configure connection pool")
	}
	if err := db.Migrate(conn); err != nil {
		log.Error().Err(err).Msg("database migration failed")
	}
	return conn
}
