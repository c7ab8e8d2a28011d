package domain

import "context"

type ListingRepository interface {
	// Write paths
	UpsertListing(ctx context.Context, l Listing) (int64, error)
	DeleteListing(ctx context.Context, id int64) error

	// Read paths
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context, q ListingQuery) ([]Listing, int64, error)
	SearchSuggestions(ctx context.Context, prefix string) ([]SearchSuggestion, error)
}

type SavedSearchRepository interface {
	InsertSavedSearch(ctx context.Context, s SavedSearch) error
	ListSavedSearches(ctx context.Context, userID string) ([]SavedSearch, error)
	GetSavedSearch(ctx context.Context, userID, id string) (SavedSearch, error)
	UpdateSavedSearch(ctx context.Context, s SavedSearch) (SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, userID, id string) error
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, listingID int64, userID string) error
	RemoveFavorite(ctx context.Context, listingID int64, userID string) error
	FavoriteCount(ctx context.Context, listingID int64) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

// ListingQuery carries the advanced-search filters plus paging. The
// Criteria map is the opaque saved-search form; recognized keys are
// mapped to SQL, unknown keys are ignored.
type ListingQuery struct {
	Kind     *Kind
	City     *string
	District *string
	Category *string
	Status   *string
	MinPrice *int64
	MaxPrice *int64
	Page     int // zero-based
	Size     int
}

// ListingPage mirrors the REST pagination envelope.
type ListingPage struct {
	Content       []Listing `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Size          int       `json:"size"`
	Number        int       `json:"number"`
}
