package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "ilanhub/internal/adapters/http_server"
	"ilanhub/internal/adapters/observability"
	"ilanhub/internal/adapters/overpass"
	redisad "ilanhub/internal/adapters/redis"
	"ilanhub/internal/app"
	"ilanhub/internal/auth"
	"ilanhub/internal/live"
	"ilanhub/internal/places"
	"ilanhub/internal/shared"
	mysqlrepo "ilanhub/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	geodata, err := overpass.New(cfg.OverpassBase, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("overpass client init failed")
	}
	hub := live.NewHub()

	handlers := &server.Handlers{
		Suggest:   app.NewSuggestService(repo, cache, cfg.SuggestTTL),
		Listings:  app.NewListingService(repo, cache, cfg.CacheTTL),
		Saved:     app.NewSavedSearchService(repo),
		Favorites: app.NewFavoriteService(repo, repo, hub),
		Places:    places.NewService(geodata),
		Hub:       hub,
		Verifier:  auth.NewVerifier(cfg.JWTSecret),
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
