package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ilanhub/internal/adapters/observability"
	redisad "ilanhub/internal/adapters/redis"
	"ilanhub/internal/app"
	"ilanhub/internal/shared"
	mysqlrepo "ilanhub/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.ImportFile).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	raw, err := os.ReadFile(cfg.ImportFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.ImportFile).Msg("read import file failed")
	}
	var payloads []map[string]any
	if err := json.Unmarshal(raw, &payloads); err != nil {
		log.Fatal().Err(err).Msg("import file is not a JSON array")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	imp := app.NewImportService(repo, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	var ok, failed int
	var mu sync.Mutex

	for i, p := range payloads {
		i, p := i, p

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			id, err := imp.ImportListing(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Warn().Int("index", i).Err(err).Msg("import failed")
				return
			}
			ok++
			log.Info().Int("index", i).Int64("id", id).Msg("import ok")
		}()
	}

	wg.Wait()
	log.Info().Int("imported", ok).Int("failed", failed).Msg("import completed")
}
