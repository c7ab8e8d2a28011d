package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ilanhub/internal/app"
	"ilanhub/internal/auth"
	"ilanhub/internal/domain"
	"ilanhub/internal/live"
	"ilanhub/internal/places"
)

type Handlers struct {
	Suggest   *app.SuggestService
	Listings  *app.ListingService
	Saved     *app.SavedSearchService
	Favorites *app.FavoriteService
	Places    *places.Service
	Hub       *live.Hub
	Verifier  *auth.Verifier
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// Holds its connection open; stays outside the timeout group.
	s.mux.Get("/v1/ws", live.WSHandler(h.Hub))

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(15 * time.Second))

		r.Get("/v1/suggestions", h.suggestions)
		r.Get("/v1/fields/{kind}", h.fields)
		r.Get("/v1/listings", h.listListings)
		r.Get("/v1/listings/{id}", h.getListing)
		r.Get("/v1/listings/{id}/nearby", h.nearbyPlaces)
		r.Get("/v1/listings/{id}/favorite", h.favoriteCount)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Verifier))

			r.Get("/v1/me", h.me)
			r.Post("/v1/listings", h.createListing)
			r.With(RequireAdmin).Delete("/v1/listings/{id}", h.deleteListing)

			r.Post("/v1/listings/{id}/favorite", h.favorite)
			r.Delete("/v1/listings/{id}/favorite", h.unfavorite)

			r.Get("/v1/saved-searches", h.listSavedSearches)
			r.Post("/v1/saved-searches", h.createSavedSearch)
			r.Put("/v1/saved-searches/{id}", h.updateSavedSearch)
			r.Post("/v1/saved-searches/{id}/notification", h.toggleNotification)
			r.Delete("/v1/saved-searches/{id}", h.deleteSavedSearch)
			r.Get("/v1/saved-searches/{id}/results", h.executeSavedSearch)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeValidation renders per-field errors as one 400 body.
func writeValidation(w http.ResponseWriter, verr *domain.ValidationError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(struct {
		problem
		Fields []domain.FieldError `json:"fields"`
	}{
		problem: problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest},
		Fields:  verr.Fields,
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	return page, size
}

// ---- suggestions ----

func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	out, err := h.Suggest.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "suggestion lookup failed")
		return
	}
	if out == nil {
		out = []domain.SearchSuggestion{}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- listing form fields ----

func (h *Handlers) fields(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown listing kind")
		return
	}
	writeCacheable(w, r, domain.FieldsFor(kind))
}

// ---- listings ----

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]string{}
	for _, k := range []string{"kind", "city", "district", "category", "status", "min_price", "max_price"} {
		if v := r.URL.Query().Get(k); v != "" {
			criteria[k] = v
		}
	}
	page, size := pageParams(r)
	out, err := h.Listings.List(r.Context(), app.QueryFromCriteria(criteria, page, size))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing search failed")
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	l, err := h.Listings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing lookup failed")
		return
	}
	writeCacheable(w, r, l)
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var in domain.Listing
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed listing payload")
		return
	}
	out, err := h.Listings.Create(r.Context(), in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeValidation(w, verr)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing create failed")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Listings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- nearby places ----

func (h *Handlers) nearbyPlaces(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	l, err := h.Listings.Get(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return
	}
	if l.Lat == nil || l.Lon == nil {
		writeJSON(w, http.StatusOK, []domain.Place{})
		return
	}
	out, err := h.Places.Nearby(r.Context(), domain.Point{Lat: *l.Lat, Lon: *l.Lon}, r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "unknown place category")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "nearby lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- favorites ----

type favoriteResponse struct {
	FavoriteCount int64 `json:"favoriteCount"`
}

func (h *Handlers) favorite(w http.ResponseWriter, r *http.Request) {
	h.mutateFavorite(w, r, h.Favorites.Favorite)
}

func (h *Handlers) unfavorite(w http.ResponseWriter, r *http.Request) {
	h.mutateFavorite(w, r, h.Favorites.Unfavorite)
}

func (h *Handlers) mutateFavorite(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, listingID int64, userID string) (int64, error)) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	sess, _ := sessionFrom(r.Context())
	n, err := op(r.Context(), id, sess.Profile.ID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "favorite update failed")
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{FavoriteCount: n})
}

func (h *Handlers) favoriteCount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	n, err := h.Favorites.Count(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "favorite count failed")
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{FavoriteCount: n})
}

// ---- session ----

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess.Profile)
}

// ---- saved searches ----

func (h *Handlers) listSavedSearches(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	out, err := h.Saved.List(r.Context(), sess.Profile.ID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "saved search list failed")
		return
	}
	if out == nil {
		out = []domain.SavedSearch{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createSavedSearch(w http.ResponseWriter, r *http.Request) {
	var in domain.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed saved search payload")
		return
	}
	if in.Name == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "name is required")
		return
	}
	sess, _ := sessionFrom(r.Context())
	out, err := h.Saved.Create(r.Context(), sess.Profile.ID, in.Name, in.Criteria)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "saved search create failed")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateSavedSearch(w http.ResponseWriter, r *http.Request) {
	var in domain.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed saved search payload")
		return
	}
	in.ID = chi.URLParam(r, "id")
	sess, _ := sessionFrom(r.Context())
	out, err := h.Saved.Update(r.Context(), sess.Profile.ID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "saved search not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "saved search update failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) toggleNotification(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	out, err := h.Saved.ToggleNotification(r.Context(), sess.Profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "saved search not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "notification toggle failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeProblem(w, http.StatusBadRequest, "Confirmation Required", "pass confirm=true to delete")
		return
	}
	sess, _ := sessionFrom(r.Context())
	if err := h.Saved.Delete(r.Context(), sess.Profile.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "saved search not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "saved search delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) executeSavedSearch(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	page, size := pageParams(r)
	out, err := h.Saved.Execute(r.Context(), sess.Profile.ID, chi.URLParam(r, "id"), h.Listings, page, size)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "saved search not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "saved search run failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
