// Package client is the typed HTTP client for the ilanhub API. It is
// what the interaction cores (suggest box, saved-search manager) are
// wired to in a real deployment; tests drive them with fakes instead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ilanhub/internal/auth"
	"ilanhub/internal/domain"
)

var ErrUnavailable = errors.New("client: service unavailable")

type Client struct {
	base  string
	hc    *http.Client
	store *auth.Store
}

// New builds a client around the API base URL. The auth store supplies
// the bearer token; a nil store means unauthenticated calls only.
func New(base string, store *auth.Store) *Client {
	return &Client{
		base:  base,
		hc:    &http.Client{Timeout: 15 * time.Second},
		store: store,
	}
}

// Suggest satisfies search.SuggestFetcher.
func (c *Client) Suggest(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	var out []domain.SearchSuggestion
	p := "/v1/suggestions?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Listings runs an advanced search and returns one page.
func (c *Client) Listings(ctx context.Context, criteria map[string]string, page, size int) (domain.ListingPage, error) {
	q := url.Values{}
	for k, v := range criteria {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	var out domain.ListingPage
	err := c.do(ctx, http.MethodGet, "/v1/listings?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	var out domain.Listing
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/listings/%d", id), nil, &out)
	return out, err
}

func (c *Client) NearbyPlaces(ctx context.Context, listingID int64, category string) ([]domain.Place, error) {
	var out []domain.Place
	p := fmt.Sprintf("/v1/listings/%d/nearby?category=%s", listingID, url.QueryEscape(category))
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- saved searches (satisfies saved.API) ----

func (c *Client) List(ctx context.Context) ([]domain.SavedSearch, error) {
	var out []domain.SavedSearch
	if err := c.do(ctx, http.MethodGet, "/v1/saved-searches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, name string, criteria map[string]string) (domain.SavedSearch, error) {
	body := domain.SavedSearch{Name: name, Criteria: criteria}
	var out domain.SavedSearch
	err := c.do(ctx, http.MethodPost, "/v1/saved-searches", body, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, s domain.SavedSearch) (domain.SavedSearch, error) {
	var out domain.SavedSearch
	err := c.do(ctx, http.MethodPut, "/v1/saved-searches/"+url.PathEscape(s.ID), s, &out)
	return out, err
}

// Delete is only ever called after the user confirmed, so the confirm
// flag is always sent.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/saved-searches/"+url.PathEscape(id)+"?confirm=true", nil, nil)
}

// ---- favorites ----

type favoriteResponse struct {
	FavoriteCount int64 `json:"favoriteCount"`
}

func (c *Client) Favorite(ctx context.Context, listingID int64) (int64, error) {
	var out favoriteResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/listings/%d/favorite", listingID), nil, &out)
	return out.FavoriteCount, err
}

func (c *Client) Unfavorite(ctx context.Context, listingID int64) (int64, error) {
	var out favoriteResponse
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/listings/%d/favorite", listingID), nil, &out)
	return out.FavoriteCount, err
}

// ---- internals ----

type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// do performs one attempt. Failures are surfaced, never retried; a 401
// clears the session so the caller lands back at login.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.store != nil {
		if sess, err := c.store.Current(); err == nil {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		if c.store != nil {
			c.store.Clear()
		}
		return auth.ErrSessionExpired
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		var p problem
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&p) == nil && p.Title != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, p.Title, p.Detail)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
}
