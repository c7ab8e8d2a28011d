package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	httpserver "ilanhub/internal/adapters/http_server"
	"ilanhub/internal/adapters/overpass"
	"ilanhub/internal/app"
	"ilanhub/internal/auth"
	"ilanhub/internal/domain"
	"ilanhub/internal/live"
	"ilanhub/internal/places"
)

const testSecret = "handlers-test-secret"

// ---- fakes ----

type fakeRepo struct {
	listings    map[int64]domain.Listing
	suggestions []domain.SearchSuggestion
	nextID      int64
}

func (f *fakeRepo) UpsertListing(ctx context.Context, l domain.Listing) (int64, error) {
	if f.listings == nil {
		f.listings = map[int64]domain.Listing{}
	}
	f.nextID++
	l.ID = f.nextID
	f.listings[l.ID] = l
	return l.ID, nil
}
func (f *fakeRepo) DeleteListing(ctx context.Context, id int64) error {
	if _, ok := f.listings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}
func (f *fakeRepo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}
func (f *fakeRepo) ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, int64, error) {
	var out []domain.Listing
	for _, l := range f.listings {
		if q.City != nil && l.City != *q.City {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}
func (f *fakeRepo) SearchSuggestions(ctx context.Context, prefix string) ([]domain.SearchSuggestion, error) {
	return f.suggestions, nil
}

type fakeSavedRepo struct {
	rows map[string]domain.SavedSearch
}

func (f *fakeSavedRepo) InsertSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	if f.rows == nil {
		f.rows = map[string]domain.SavedSearch{}
	}
	f.rows[s.ID] = s
	return nil
}
func (f *fakeSavedRepo) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	var out []domain.SavedSearch
	for _, s := range f.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSavedRepo) GetSavedSearch(ctx context.Context, userID, id string) (domain.SavedSearch, error) {
	s, ok := f.rows[id]
	if !ok || s.UserID != userID {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	return s, nil
}
func (f *fakeSavedRepo) UpdateSavedSearch(ctx context.Context, s domain.SavedSearch) (domain.SavedSearch, error) {
	if _, ok := f.rows[s.ID]; !ok {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	f.rows[s.ID] = s
	return s, nil
}
func (f *fakeSavedRepo) DeleteSavedSearch(ctx context.Context, userID, id string) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeFavRepo struct{ counts map[int64]int64 }

func (f *fakeFavRepo) AddFavorite(ctx context.Context, listingID int64, userID string) error {
	if f.counts == nil {
		f.counts = map[int64]int64{}
	}
	f.counts[listingID]++
	return nil
}
func (f *fakeFavRepo) RemoveFavorite(ctx context.Context, listingID int64, userID string) error {
	if f.counts[listingID] > 0 {
		f.counts[listingID]--
	}
	return nil
}
func (f *fakeFavRepo) FavoriteCount(ctx context.Context, listingID int64) (int64, error) {
	return f.counts[listingID], nil
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }

type emptyPlaces struct{}

func (emptyPlaces) Around(ctx context.Context, origin domain.Point, predicate string, radius int) ([]overpass.Element, error) {
	return nil, nil
}

// ---- setup ----

func newTestServer(t *testing.T, repo *fakeRepo, savedRepo *fakeSavedRepo) *httptest.Server {
	t.Helper()
	hub := live.NewHub()
	h := &httpserver.Handlers{
		Suggest:   app.NewSuggestService(repo, nopCache{}, time.Minute),
		Listings:  app.NewListingService(repo, nopCache{}, time.Minute),
		Saved:     app.NewSavedSearchService(savedRepo),
		Favorites: app.NewFavoriteService(&fakeFavRepo{}, repo, hub),
		Places:    places.NewService(emptyPlaces{}),
		Hub:       hub,
		Verifier:  auth.NewVerifier(testSecret),
	}
	srv := httpserver.New()
	srv.MountHandlers(h)
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func token(t *testing.T, sub string, roles ...string) string {
	t.Helper()
	claims := auth.Claims{
		Email: sub + "@example.com",
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func doReq(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return res
}

// ---- tests ----

func TestSuggestions_PublicAndAlwaysArray(t *testing.T) {
	repo := &fakeRepo{suggestions: []domain.SearchSuggestion{
		{Text: "Izmir", Type: domain.SuggestCity, Count: 3},
	}}
	ts := newTestServer(t, repo, &fakeSavedRepo{})

	res := doReq(t, http.MethodGet, ts.URL+"/v1/suggestions?q=iz", "", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var out []domain.SearchSuggestion
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Text != "Izmir" {
		t.Fatalf("body: %+v", out)
	}

	// Short query is still a 200 with an empty array, not null
	res2 := doReq(t, http.MethodGet, ts.URL+"/v1/suggestions?q=i", "", nil)
	defer res2.Body.Close()
	var arr []domain.SearchSuggestion
	if err := json.NewDecoder(res2.Body).Decode(&arr); err != nil {
		t.Fatalf("decode short: %v", err)
	}
	if arr == nil || len(arr) != 0 {
		t.Fatalf("expected empty array, got %v", arr)
	}
}

func TestListingLifecycle_AuthAndValidation(t *testing.T) {
	repo := &fakeRepo{}
	ts := newTestServer(t, repo, &fakeSavedRepo{})

	payload := domain.Listing{
		Kind: domain.KindLand, Title: "Field near Urla", City: "Izmir",
		Status: "sale", Price: 3000000,
		Land: &domain.LandDetails{AreaM2: 5000, Zoning: "agricultural"},
	}

	// No token
	res := doReq(t, http.MethodPost, ts.URL+"/v1/listings", "", payload)
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: %d", res.StatusCode)
	}

	// Valid token
	res = doReq(t, http.MethodPost, ts.URL+"/v1/listings", token(t, "u1", "USER"), payload)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d", res.StatusCode)
	}
	var created domain.Listing
	_ = json.NewDecoder(res.Body).Decode(&created)
	res.Body.Close()
	if created.ID == 0 {
		t.Fatal("no id assigned")
	}

	// Validation failure carries field errors
	bad := payload
	bad.Land = nil
	res = doReq(t, http.MethodPost, ts.URL+"/v1/listings", token(t, "u1", "USER"), bad)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid create: %d", res.StatusCode)
	}
	var verr struct {
		Fields []domain.FieldError `json:"fields"`
	}
	_ = json.NewDecoder(res.Body).Decode(&verr)
	res.Body.Close()
	if len(verr.Fields) == 0 {
		t.Fatal("expected field errors in body")
	}

	// Delete requires the admin role
	res = doReq(t, http.MethodDelete, ts.URL+"/v1/listings/1", token(t, "u1", "USER"), nil)
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin delete: %d", res.StatusCode)
	}
	res = doReq(t, http.MethodDelete, ts.URL+"/v1/listings/1", token(t, "boss", "ROLE_ADMIN"), nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete: %d", res.StatusCode)
	}
}

func TestGetListing_ETagRoundTrip(t *testing.T) {
	repo := &fakeRepo{}
	_, _ = repo.UpsertListing(context.Background(), domain.Listing{
		Kind: domain.KindWorkplace, Title: "Shop on main street", City: "Bursa",
		Status: "rent", Price: 40000,
		Workplace: &domain.WorkplaceDetails{AreaM2: 60, BusinessType: "retail"},
	})
	ts := newTestServer(t, repo, &fakeSavedRepo{})

	res := doReq(t, http.MethodGet, ts.URL+"/v1/listings/1", "", nil)
	etag := res.Header.Get("ETag")
	res.Body.Close()
	if res.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("first get: %d etag=%q", res.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/listings/1", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional get: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}
}

func TestSavedSearches_UserScopedLifecycle(t *testing.T) {
	ts := newTestServer(t, &fakeRepo{}, &fakeSavedRepo{})
	u1 := token(t, "u1", "USER")

	// Create
	res := doReq(t, http.MethodPost, ts.URL+"/v1/saved-searches", u1, domain.SavedSearch{
		Name:     "Flats in Izmir",
		Criteria: map[string]string{"kind": "real_estate", "city": "Izmir"},
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d", res.StatusCode)
	}
	var created domain.SavedSearch
	_ = json.NewDecoder(res.Body).Decode(&created)
	res.Body.Close()
	if created.ID == "" || created.NotificationEnabled {
		t.Fatalf("bad created row: %+v", created)
	}

	// Toggle twice
	res = doReq(t, http.MethodPost, ts.URL+"/v1/saved-searches/"+created.ID+"/notification", u1, nil)
	var toggled domain.SavedSearch
	_ = json.NewDecoder(res.Body).Decode(&toggled)
	res.Body.Close()
	if !toggled.NotificationEnabled || toggled.Criteria["city"] != "Izmir" {
		t.Fatalf("toggle: %+v", toggled)
	}

	// Another user cannot see it
	res = doReq(t, http.MethodGet, ts.URL+"/v1/saved-searches", token(t, "u2", "USER"), nil)
	var other []domain.SavedSearch
	_ = json.NewDecoder(res.Body).Decode(&other)
	res.Body.Close()
	if len(other) != 0 {
		t.Fatalf("leaked rows: %+v", other)
	}

	// Delete without confirm is rejected
	res = doReq(t, http.MethodDelete, ts.URL+"/v1/saved-searches/"+created.ID, u1, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: %d", res.StatusCode)
	}
	res = doReq(t, http.MethodDelete, ts.URL+"/v1/saved-searches/"+created.ID+"?confirm=true", u1, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("confirmed delete: %d", res.StatusCode)
	}
}

func TestExpiredToken_Is401(t *testing.T) {
	ts := newTestServer(t, &fakeRepo{}, &fakeSavedRepo{})
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	res := doReq(t, http.MethodGet, ts.URL+"/v1/saved-searches", expired, nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "problem+json") {
		t.Fatalf("expected problem+json, got %q", ct)
	}
}

func TestFields_PerKindDispatch(t *testing.T) {
	ts := newTestServer(t, &fakeRepo{}, &fakeSavedRepo{})

	res := doReq(t, http.MethodGet, ts.URL+"/v1/fields/vehicle", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var fields []domain.Field
	_ = json.NewDecoder(res.Body).Decode(&fields)
	res.Body.Close()
	names := map[string]bool{}
	for _, f := range fields {
		names[f.Name] = true
	}
	if !names["brand"] || !names["model"] {
		t.Fatalf("vehicle fields missing: %+v", fields)
	}

	res = doReq(t, http.MethodGet, ts.URL+"/v1/fields/boat", "", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown kind: %d", res.StatusCode)
	}
}
