package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ilanhub/internal/domain"
)

// SavedSearchService owns the persisted saved searches. The criteria
// map is stored verbatim; only the notification flag is ever rewritten
// by this service, and updates always hand back the stored row so
// callers can treat it as ground truth.
type SavedSearchService struct {
	repo domain.SavedSearchRepository
}

func NewSavedSearchService(r domain.SavedSearchRepository) *SavedSearchService {
	return &SavedSearchService{repo: r}
}

func (s *SavedSearchService) Create(ctx context.Context, userID, name string, criteria map[string]string) (domain.SavedSearch, error) {
	now := time.Now().UTC()
	ss := domain.SavedSearch{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Criteria:  criteria,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertSavedSearch(ctx, ss); err != nil {
		return domain.SavedSearch{}, err
	}
	return ss, nil
}

func (s *SavedSearchService) List(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	return s.repo.ListSavedSearches(ctx, userID)
}

func (s *SavedSearchService) Update(ctx context.Context, userID string, payload domain.SavedSearch) (domain.SavedSearch, error) {
	payload.UserID = userID
	payload.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateSavedSearch(ctx, payload)
}

// ToggleNotification loads the stored search, inverts only the
// notification flag, and returns the updated row.
func (s *SavedSearchService) ToggleNotification(ctx context.Context, userID, id string) (domain.SavedSearch, error) {
	cur, err := s.repo.GetSavedSearch(ctx, userID, id)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	cur.NotificationEnabled = !cur.NotificationEnabled
	cur.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateSavedSearch(ctx, cur)
}

func (s *SavedSearchService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteSavedSearch(ctx, userID, id)
}

// Execute resolves the stored criteria and runs the search through the
// listing service, passing the criteria map through unchanged.
func (s *SavedSearchService) Execute(ctx context.Context, userID, id string, listings *ListingService, page, size int) (domain.ListingPage, error) {
	ss, err := s.repo.GetSavedSearch(ctx, userID, id)
	if err != nil {
		return domain.ListingPage{}, err
	}
	return listings.List(ctx, QueryFromCriteria(ss.Criteria, page, size))
}
