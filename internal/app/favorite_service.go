package app

import (
	"context"

	"ilanhub/internal/domain"
	"ilanhub/internal/live"
)

// FavoriteService keeps per-listing favorite counts and pushes every
// change to the live hub so open listing pages update in place.
type FavoriteService struct {
	favs     domain.FavoriteRepository
	listings domain.ListingRepository
	hub      *live.Hub
}

func NewFavoriteService(f domain.FavoriteRepository, l domain.ListingRepository, hub *live.Hub) *FavoriteService {
	return &FavoriteService{favs: f, listings: l, hub: hub}
}

func (s *FavoriteService) Favorite(ctx context.Context, listingID int64, userID string) (int64, error) {
	if err := s.favs.AddFavorite(ctx, listingID, userID); err != nil {
		return 0, err
	}
	return s.broadcast(ctx, listingID)
}

func (s *FavoriteService) Unfavorite(ctx context.Context, listingID int64, userID string) (int64, error) {
	if err := s.favs.RemoveFavorite(ctx, listingID, userID); err != nil {
		return 0, err
	}
	return s.broadcast(ctx, listingID)
}

func (s *FavoriteService) Count(ctx context.Context, listingID int64) (int64, error) {
	return s.favs.FavoriteCount(ctx, listingID)
}

// broadcast publishes the absolute count, so duplicate or out-of-order
// deliveries on the subscriber side stay harmless.
func (s *FavoriteService) broadcast(ctx context.Context, listingID int64) (int64, error) {
	count, err := s.favs.FavoriteCount(ctx, listingID)
	if err != nil {
		return 0, err
	}
	kind := ""
	if l, err := s.listings.GetListing(ctx, listingID); err == nil {
		kind = string(l.Kind)
	}
	s.hub.Publish(live.Event{ListingID: listingID, ListingType: kind, FavoriteCount: count})
	return count, nil
}
