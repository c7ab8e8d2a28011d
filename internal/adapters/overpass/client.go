package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ilanhub/internal/domain"
)

// Element is one raw result row from the Overpass API. Ways and
// relations carry their coordinate under "center"; the client folds
// that into Lat/Lon so callers never see the difference.
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type envelope struct {
	Elements []struct {
		Type   string  `json:"type"`
		ID     int64   `json:"id"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 15 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnavailable = errors.New("overpass: unavailable")
	ErrRateLimited = errors.New("overpass: rate limited")
)

// Around queries points of interest matching the tag predicate within
// radius meters of origin. A query is a single attempt: failures are a
// degraded state handled by the caller, never retried here.
func (c *Client) Around(ctx context.Context, origin domain.Point, predicate string, radius int) ([]Element, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := buildQuery(origin, predicate, radius)
	u := c.base + "?data=" + url.QueryEscape(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ilanhub/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("overpass: decode: %w", err)
		}
		out := make([]Element, 0, len(env.Elements))
		for _, e := range env.Elements {
			lat, lon := e.Lat, e.Lon
			if e.Center != nil {
				lat, lon = e.Center.Lat, e.Center.Lon
			}
			out = append(out, Element{Type: e.Type, ID: e.ID, Lat: lat, Lon: lon, Tags: e.Tags})
		}
		return out, nil

	case http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimited

	case http.StatusGatewayTimeout, http.StatusBadGateway, http.StatusServiceUnavailable:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrUnavailable

	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("overpass: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// buildQuery renders the Overpass QL text for one category lookup.
// Nodes and ways are both matched; "out center" gives ways a coordinate.
func buildQuery(origin domain.Point, predicate string, radius int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:10];(")
	for _, kind := range []string{"node", "way"} {
		fmt.Fprintf(&b, "%s[%s](around:%d,%f,%f);", kind, predicate, radius, origin.Lat, origin.Lon)
	}
	b.WriteString(");out center 30;")
	return b.String()
}
