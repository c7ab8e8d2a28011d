package app

import (
	"context"
	"fmt"

	"ilanhub/internal/domain"
)

// ImportService bulk-loads listings from heterogeneous export payloads
// (partner feeds, legacy dumps) into the repository.
type ImportService struct {
	repo  domain.ListingRepository
	cache domain.Cache
}

func NewImportService(r domain.ListingRepository, c domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: c}
}

// ImportListing maps one raw payload, validates it, and upserts it.
// The suggestion cache is left to expire on its own TTL; per-listing
// caches are evicted eagerly.
func (s *ImportService) ImportListing(ctx context.Context, raw map[string]any) (int64, error) {
	l := MapListing(raw)
	if verr := ValidateListing(l); verr != nil {
		return 0, fmt.Errorf("import rejected: %w", verr)
	}
	id, err := s.repo.UpsertListing(ctx, l)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, listingKey(id))
	}
	return id, nil
}
