package places_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ilanhub/internal/adapters/overpass"
	"ilanhub/internal/domain"
	"ilanhub/internal/places"
)

type fakeClient struct {
	els []overpass.Element
	err error
}

func (f *fakeClient) Around(ctx context.Context, origin domain.Point, predicate string, radius int) ([]overpass.Element, error) {
	return f.els, f.err
}

func tags(name string) map[string]string {
	m := map[string]string{"amenity": "school"}
	if name != "" {
		m["name"] = name
	}
	return m
}

func TestNearby_SortsAscendingAndCaps(t *testing.T) {
	origin := domain.Point{Lat: 41.0082, Lon: 28.9784}
	var els []overpass.Element
	// 15 candidates placed progressively farther north, supplied shuffled.
	for _, i := range []int{7, 2, 11, 0, 14, 5, 9, 1, 13, 3, 8, 6, 12, 4, 10} {
		els = append(els, overpass.Element{
			ID:   int64(i),
			Lat:  origin.Lat + float64(i+1)*0.0005,
			Lon:  origin.Lon,
			Tags: tags(fmt.Sprintf("place-%d", i)),
		})
	}
	svc := places.NewService(&fakeClient{els: els})

	out, err := svc.Nearby(context.Background(), origin, "education")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != places.MaxResults {
		t.Fatalf("expected %d results, got %d", places.MaxResults, len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Distance < out[i-1].Distance {
			t.Fatalf("not sorted ascending at %d: %+v", i, out)
		}
	}
	if out[0].ID != 0 {
		t.Fatalf("closest candidate should rank first, got id %d", out[0].ID)
	}
}

func TestNearby_TiesKeepInputOrder(t *testing.T) {
	origin := domain.Point{Lat: 41.0, Lon: 29.0}
	els := []overpass.Element{
		{ID: 10, Lat: 41.001, Lon: 29.0, Tags: tags("first")},
		{ID: 20, Lat: 41.001, Lon: 29.0, Tags: tags("second")},
		{ID: 30, Lat: 41.001, Lon: 29.0, Tags: tags("third")},
	}
	svc := places.NewService(&fakeClient{els: els})

	out, _ := svc.Nearby(context.Background(), origin, "education")
	if len(out) != 3 || out[0].ID != 10 || out[1].ID != 20 || out[2].ID != 30 {
		t.Fatalf("tie order not stable: %+v", out)
	}
}

func TestNearby_DropsUnlabeledCandidates(t *testing.T) {
	origin := domain.Point{Lat: 41.0, Lon: 29.0}
	els := []overpass.Element{
		{ID: 1, Lat: 41.001, Lon: 29.0, Tags: map[string]string{}}, // no label at all
		{ID: 2, Lat: 41.002, Lon: 29.0, Tags: tags("Named School")},
		{ID: 3, Lat: 41.003, Lon: 29.0, Tags: map[string]string{"amenity": "school"}}, // tag-only label
	}
	svc := places.NewService(&fakeClient{els: els})

	out, _ := svc.Nearby(context.Background(), origin, "education")
	if len(out) != 2 {
		t.Fatalf("expected 2 labeled results, got %d: %+v", len(out), out)
	}
	if out[0].Name != "Named School" || out[1].Name != "school" {
		t.Fatalf("unexpected labels: %+v", out)
	}
}

func TestNearby_DistanceIsDerived(t *testing.T) {
	origin := domain.Point{Lat: 41.0082, Lon: 28.9784}
	els := []overpass.Element{
		{ID: 1, Lat: 41.0092, Lon: 28.9790, Tags: tags("Close By")},
	}
	svc := places.NewService(&fakeClient{els: els})

	out, _ := svc.Nearby(context.Background(), origin, "education")
	if len(out) != 1 {
		t.Fatalf("expected 1 result")
	}
	// ~120m reference; tolerance +-5m per the ranking contract.
	if out[0].Distance < 115 || out[0].Distance > 125 {
		t.Fatalf("expected ~120m, got %f", out[0].Distance)
	}
}

func TestNearby_FetchFailureDegradesToEmpty(t *testing.T) {
	svc := places.NewService(&fakeClient{err: errors.New("boom")})

	out, err := svc.Nearby(context.Background(), domain.Point{Lat: 41, Lon: 29}, "health")
	if err != nil {
		t.Fatalf("fetch failure must not surface an error, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty degraded result, got %+v", out)
	}
}

func TestNearby_UnknownCategory(t *testing.T) {
	svc := places.NewService(&fakeClient{})
	_, err := svc.Nearby(context.Background(), domain.Point{}, "nightlife")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
