package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"ilanhub/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Partner feeds disagree on field names; each canonical field lists the
// paths tried in order.
var listingAliases = map[string][]string{
	"title":    {"title", "name", "headline", "subject"},
	"city":     {"city", "location.city", "address.city", "province"},
	"district": {"district", "location.district", "address.district", "county", "town"},
	"category": {"category", "category_name", "categoryName", "category.slug"},
	"status":   {"status", "listing_type", "listingType", "offer_type"},
	"currency": {"currency", "price_currency", "priceCurrency"},
	"kind":     {"kind", "type", "listing_kind", "main_category", "mainCategory"},
}

var kindAliases = map[string]domain.Kind{
	"real_estate": domain.KindRealEstate,
	"realestate":  domain.KindRealEstate,
	"estate":      domain.KindRealEstate,
	"housing":     domain.KindRealEstate,
	"vehicle":     domain.KindVehicle,
	"car":         domain.KindVehicle,
	"auto":        domain.KindVehicle,
	"land":        domain.KindLand,
	"plot":        domain.KindLand,
	"workplace":   domain.KindWorkplace,
	"commercial":  domain.KindWorkplace,
	"office":      domain.KindWorkplace,
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getInt(m map[string]any, paths ...string) int {
	if f := getFloatFlexible(m, paths...); f != nil {
		return int(*f)
	}
	return 0
}

func getStrings(m map[string]any, path string) []string {
	v := lookupAny(m, path)
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

/********** mapping **********/

// MapListing turns one raw feed payload into a domain listing. The
// full payload is retained in RawJSON for later reprocessing.
func MapListing(m map[string]any) domain.Listing {
	l := domain.Listing{
		Kind:     mapKind(firstAlias(m, "kind")),
		Title:    firstAlias(m, "title"),
		City:     firstAlias(m, "city"),
		District: firstAlias(m, "district"),
		Category: firstAlias(m, "category"),
		Status:   normalizeStatus(firstAlias(m, "status")),
		Currency: firstAlias(m, "currency"),
		Images:   getStrings(m, "images"),
	}
	if l.Currency == "" {
		l.Currency = "TRY"
	}
	if f := getFloatFlexible(m, "price", "price.amount", "amount"); f != nil {
		l.Price = int64(*f)
	}
	l.Lat = getFloatFlexible(m, "lat", "latitude", "location.lat", "coordinates.lat")
	l.Lon = getFloatFlexible(m, "lon", "lng", "longitude", "location.lon", "coordinates.lon")
	if raw, err := json.Marshal(m); err == nil {
		l.RawJSON = raw
	}

	switch l.Kind {
	case domain.KindRealEstate:
		l.RealEstate = &domain.RealEstateDetails{
			Rooms:     lookupStr(m, "rooms"),
			AreaM2:    getInt(m, "area_m2", "area", "size_m2", "squareMeters"),
			Heating:   lookupStr(m, "heating"),
			Furnished: lookupAny(m, "furnished") == true,
		}
	case domain.KindVehicle:
		l.Vehicle = &domain.VehicleDetails{
			Brand:   firstNonEmpty(lookupStr(m, "brand"), lookupStr(m, "make")),
			Model:   lookupStr(m, "model"),
			Year:    getInt(m, "year", "model_year", "modelYear"),
			Mileage: getInt(m, "mileage", "km", "odometer"),
			Fuel:    lookupStr(m, "fuel"),
			Gearbox: firstNonEmpty(lookupStr(m, "gearbox"), lookupStr(m, "transmission")),
		}
	case domain.KindLand:
		l.Land = &domain.LandDetails{
			AreaM2:   getInt(m, "area_m2", "area", "size_m2"),
			Zoning:   lookupStr(m, "zoning"),
			ParcelNo: lookupStr(m, "parcel_no"),
			BlockNo:  lookupStr(m, "block_no"),
		}
	case domain.KindWorkplace:
		l.Workplace = &domain.WorkplaceDetails{
			AreaM2:       getInt(m, "area_m2", "area", "size_m2"),
			BusinessType: firstNonEmpty(lookupStr(m, "business_type"), lookupStr(m, "businessType")),
		}
	}
	return l
}

func mapKind(s string) domain.Kind {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k
	}
	return domain.Kind(s)
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "sell", "for_sale", "satilik":
		return "sale"
	case "rent", "rental", "for_rent", "kiralik":
		return "rent"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
