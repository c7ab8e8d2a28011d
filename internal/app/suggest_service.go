package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"ilanhub/internal/domain"
)

// SuggestService answers partial-query suggestions from the listings
// repository, with a short-TTL cache in front since the same prefixes
// repeat on every keystroke across users.
type SuggestService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

const suggestLimit = 10

func NewSuggestService(r domain.ListingRepository, c domain.Cache, ttl time.Duration) *SuggestService {
	return &SuggestService{repo: r, cache: c, cacheTTL: ttl}
}

// Suggest returns ranked completions for q. Queries shorter than two
// characters produce nothing; longer ones are merged from city,
// district, category, and listing-title matches, ordered by match
// count descending and capped at ten.
func (s *SuggestService) Suggest(ctx context.Context, q string) ([]domain.SearchSuggestion, error) {
	q = strings.TrimSpace(strings.ToLower(q))
	if len([]rune(q)) < 2 {
		return nil, nil
	}

	key := "suggest:" + q
	var out []domain.SearchSuggestion
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	out, err := s.repo.SearchSuggestions(ctx, q)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > suggestLimit {
		out = out[:suggestLimit]
	}

	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
