package search

import "strconv"

// CriteriaDraft is the advanced-search form the user edits across
// three tabs before submission. Submission always serializes the whole
// current draft; there is no partial submit.
type CriteriaDraft struct {
	Location    LocationTab
	PriceStatus PriceStatusTab
	Features    FeaturesTab
}

type LocationTab struct {
	City         string
	District     string
	Neighborhood string
}

type PriceStatusTab struct {
	Kind     string // listing subtype id
	Status   string // sale|rent
	MinPrice int64
	MaxPrice int64
	Currency string
}

type FeaturesTab struct {
	Category  string
	Rooms     string
	MinAreaM2 int
	MaxAreaM2 int
	Furnished bool
}

// ToCriteria flattens the full draft into the opaque key-value map
// stored by saved searches and sent to the search endpoint. Zero-value
// fields are omitted; everything else always goes out together.
func (d CriteriaDraft) ToCriteria() map[string]string {
	m := map[string]string{}
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put("city", d.Location.City)
	put("district", d.Location.District)
	put("neighborhood", d.Location.Neighborhood)
	put("kind", d.PriceStatus.Kind)
	put("status", d.PriceStatus.Status)
	put("currency", d.PriceStatus.Currency)
	if d.PriceStatus.MinPrice > 0 {
		m["min_price"] = strconv.FormatInt(d.PriceStatus.MinPrice, 10)
	}
	if d.PriceStatus.MaxPrice > 0 {
		m["max_price"] = strconv.FormatInt(d.PriceStatus.MaxPrice, 10)
	}
	put("category", d.Features.Category)
	put("rooms", d.Features.Rooms)
	if d.Features.MinAreaM2 > 0 {
		m["min_area"] = strconv.Itoa(d.Features.MinAreaM2)
	}
	if d.Features.MaxAreaM2 > 0 {
		m["max_area"] = strconv.Itoa(d.Features.MaxAreaM2)
	}
	if d.Features.Furnished {
		m["furnished"] = "true"
	}
	return m
}

// Reset clears the draft back to its empty state.
func (d *CriteriaDraft) Reset() { *d = CriteriaDraft{} }
