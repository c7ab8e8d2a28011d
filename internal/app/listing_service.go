package app

import (
	"context"
	"fmt"
	"time"

	"ilanhub/internal/domain"
)

type ListingService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewListingService(r domain.ListingRepository, c domain.Cache, ttl time.Duration) *ListingService {
	return &ListingService{repo: r, cache: c, cacheTTL: ttl}
}

func listingKey(id int64) string { return fmt.Sprintf("listing:%d", id) }

func (s *ListingService) Get(ctx context.Context, id int64) (domain.Listing, error) {
	key := listingKey(id)
	var l domain.Listing
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

// List pages through listings and shapes the result into the
// {content, totalElements, totalPages, size, number} envelope.
func (s *ListingService) List(ctx context.Context, q domain.ListingQuery) (domain.ListingPage, error) {
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}
	if q.Page < 0 {
		q.Page = 0
	}
	items, total, err := s.repo.ListListings(ctx, q)
	if err != nil {
		return domain.ListingPage{}, err
	}
	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return domain.ListingPage{
		Content:       items,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          q.Size,
		Number:        q.Page,
	}, nil
}

// Create validates the tagged-union listing and persists it. Field
// errors never reach the repository.
func (s *ListingService) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	if verr := ValidateListing(l); verr != nil {
		return domain.Listing{}, verr
	}
	id, err := s.repo.UpsertListing(ctx, l)
	if err != nil {
		return domain.Listing{}, err
	}
	l.ID = id
	_ = s.cache.Del(ctx, listingKey(id))
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteListing(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, listingKey(id))
	return nil
}

// QueryFromCriteria maps an opaque criteria map onto the typed listing
// query. Unknown keys are ignored so old saved searches keep working.
func QueryFromCriteria(criteria map[string]string, page, size int) domain.ListingQuery {
	q := domain.ListingQuery{Page: page, Size: size}
	pick := func(k string) *string {
		if v, ok := criteria[k]; ok && v != "" {
			return &v
		}
		return nil
	}
	if v := pick("kind"); v != nil {
		k := domain.Kind(*v)
		if k.Valid() {
			q.Kind = &k
		}
	}
	q.City = pick("city")
	q.District = pick("district")
	q.Category = pick("category")
	q.Status = pick("status")
	q.MinPrice = pickInt64(criteria, "min_price")
	q.MaxPrice = pickInt64(criteria, "max_price")
	return q
}

func pickInt64(m map[string]string, k string) *int64 {
	v, ok := m[k]
	if !ok || v == "" {
		return nil
	}
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return nil
	}
	return &n
}
