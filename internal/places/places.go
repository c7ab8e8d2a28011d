package places

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"ilanhub/internal/adapters/overpass"
	"ilanhub/internal/domain"
	"ilanhub/internal/geo"
)

// SearchRadius is the lookup radius in meters around a listing.
const SearchRadius = 1000

// MaxResults caps the ranked result set.
const MaxResults = 10

// Category binds a place category id to its Overpass tag predicate.
type Category struct {
	ID        string
	Predicate string
}

var Categories = []Category{
	{ID: "education", Predicate: `"amenity"~"school|university|college|kindergarten"`},
	{ID: "health", Predicate: `"amenity"~"hospital|clinic|pharmacy|doctors|dentist"`},
	{ID: "transport", Predicate: `"highway"="bus_stop"`},
	{ID: "market", Predicate: `"shop"~"supermarket|convenience|mall"`},
	{ID: "food", Predicate: `"amenity"~"restaurant|cafe|fast_food"`},
}

func categoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// PlacesClient is the slice of the Overpass client the service needs.
type PlacesClient interface {
	Around(ctx context.Context, origin domain.Point, predicate string, radius int) ([]overpass.Element, error)
}

type Service struct {
	client PlacesClient
}

func NewService(c PlacesClient) *Service { return &Service{client: c} }

// Nearby runs the fetch-filter-sort pipeline for one category around an
// origin: candidates without any identifying label are dropped, each
// survivor is annotated with its haversine distance from the origin, the
// set is stably sorted ascending by distance and capped at MaxResults.
//
// A fetch failure degrades to an empty result with a logged diagnostic;
// it is not surfaced to the caller and is never retried. Any change of
// category or origin is a fresh pipeline run.
func (s *Service) Nearby(ctx context.Context, origin domain.Point, categoryID string) ([]domain.Place, error) {
	cat, ok := categoryByID(categoryID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	els, err := s.client.Around(ctx, origin, cat.Predicate, SearchRadius)
	if err != nil {
		log.Warn().Err(err).
			Str("category", cat.ID).
			Float64("lat", origin.Lat).
			Float64("lon", origin.Lon).
			Msg("nearby places fetch failed, degrading to empty result")
		return []domain.Place{}, nil
	}

	out := make([]domain.Place, 0, len(els))
	for _, e := range els {
		name := label(e)
		if name == "" {
			continue
		}
		out = append(out, domain.Place{
			ID:       e.ID,
			Lat:      e.Lat,
			Lon:      e.Lon,
			Name:     name,
			Type:     cat.ID,
			Distance: geo.Distance(origin, domain.Point{Lat: e.Lat, Lon: e.Lon}),
		})
	}

	// ascending by distance; stable so ties keep input order
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })

	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out, nil
}

// label picks the identifying text for an element: its name tag when
// present, otherwise the value of a recognizable category tag.
func label(e overpass.Element) string {
	if n := e.Tags["name"]; n != "" {
		return n
	}
	for _, k := range []string{"amenity", "shop", "highway"} {
		if v := e.Tags[k]; v != "" {
			return v
		}
	}
	return ""
}
