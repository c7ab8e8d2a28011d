//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "ilanhub/internal/adapters/http_server"
	rediscache "ilanhub/internal/adapters/redis"
	"ilanhub/internal/app"
	"ilanhub/internal/auth"
	"ilanhub/internal/domain"
	"ilanhub/internal/live"
	"ilanhub/internal/places"
	mysqlrepo "ilanhub/internal/storage/mysql"
)

const e2eSecret = "e2e-secret"

// ---------- helpers ----------
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func userToken(t *testing.T, sub string) string {
	t.Helper()
	claims := auth.Claims{
		Email: sub + "@example.com",
		Roles: []string{"USER"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e2eSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// ---------- the test ----------
func TestHTTP_EndToEnd_SearchAndSavedSearches(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=ilanhub",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "ilanhub")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Apply the real migrations
	applyMigrations(t, db)

	// Real redis cache backed by miniredis
	mr := miniredis.RunT(t)
	cache := rediscache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Seed two listings
	if _, err := repo.UpsertListing(ctx, domain.Listing{
		Kind: domain.KindRealEstate, Title: "Flat in Karsiyaka", City: "Izmir",
		District: "Karsiyaka", Status: "sale", Price: 4100000,
		Lat: pfloat(38.4551), Lon: pfloat(27.1113),
		RealEstate: &domain.RealEstateDetails{Rooms: "3+1", AreaM2: 120},
	}); err != nil {
		t.Fatalf("seed flat: %v", err)
	}
	if _, err := repo.UpsertListing(ctx, domain.Listing{
		Kind: domain.KindVehicle, Title: "Renault Clio 2021", City: "Izmir",
		Status: "sale", Price: 950000,
		Vehicle: &domain.VehicleDetails{Brand: "Renault", Model: "Clio", Year: 2021},
	}); err != nil {
		t.Fatalf("seed car: %v", err)
	}

	// Full server wiring
	hub := live.NewHub()
	h := &httpserver.Handlers{
		Suggest:   app.NewSuggestService(repo, cache, time.Minute),
		Listings:  app.NewListingService(repo, cache, time.Minute),
		Saved:     app.NewSavedSearchService(repo),
		Favorites: app.NewFavoriteService(repo, repo, hub),
		Places:    places.NewService(nil),
		Hub:       hub,
		Verifier:  auth.NewVerifier(e2eSecret),
	}
	srv := httpserver.New()
	srv.MountHandlers(h)
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Suggestions by prefix, served twice (second hit comes from redis)
	for i := 0; i < 2; i++ {
		res, err := http.Get(ts.URL + "/v1/suggestions?q=iz")
		if err != nil {
			t.Fatalf("GET suggestions: %v", err)
		}
		var sugg []domain.SearchSuggestion
		if err := json.NewDecoder(res.Body).Decode(&sugg); err != nil {
			t.Fatalf("decode suggestions: %v", err)
		}
		res.Body.Close()
		found := false
		for _, s := range sugg {
			if s.Type == domain.SuggestCity && s.Text == "Izmir" && s.Count == 2 {
				found = true
			}
		}
		if !found {
			t.Fatalf("pass %d: city suggestion missing: %+v", i, sugg)
		}
	}

	// Filtered listing search returns the pagination envelope
	res, err := http.Get(ts.URL + "/v1/listings?kind=vehicle&city=Izmir&page=0&size=20")
	if err != nil {
		t.Fatalf("GET listings: %v", err)
	}
	var page domain.ListingPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	res.Body.Close()
	if page.TotalElements != 1 || page.TotalPages != 1 || len(page.Content) != 1 {
		t.Fatalf("envelope: %+v", page)
	}
	if page.Content[0].Vehicle == nil || page.Content[0].Vehicle.Brand != "Renault" {
		t.Fatalf("vehicle details lost: %+v", page.Content[0])
	}

	// Saved search lifecycle over real storage
	tok := userToken(t, "e2e-user")
	body, _ := json.Marshal(domain.SavedSearch{
		Name:     "Cars in Izmir",
		Criteria: map[string]string{"kind": "vehicle", "city": "Izmir"},
	})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/saved-searches", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST saved search: %v", err)
	}
	var created domain.SavedSearch
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	res.Body.Close()
	if created.ID == "" {
		t.Fatal("no id on created saved search")
	}

	// Execute it: criteria flow through storage untouched
	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/v1/saved-searches/"+created.ID+"/results?page=0&size=20", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET results: %v", err)
	}
	var results domain.ListingPage
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	res.Body.Close()
	if results.TotalElements != 1 || results.Content[0].Kind != domain.KindVehicle {
		t.Fatalf("saved search results: %+v", results)
	}
}
