package app

import "ilanhub/internal/domain"

// ValidateListing enforces the tagged-union contract: a known kind,
// exactly the matching details variant set, and the required fields of
// the common form plus the variant's own. Violations come back as
// per-field errors, caught before anything is persisted.
func ValidateListing(l domain.Listing) *domain.ValidationError {
	var fields []domain.FieldError
	add := func(f, reason string) { fields = append(fields, domain.FieldError{Field: f, Reason: reason}) }

	if !l.Kind.Valid() {
		add("kind", "unknown listing kind")
		return &domain.ValidationError{Fields: fields}
	}

	if l.Title == "" {
		add("title", "required")
	}
	if l.City == "" {
		add("city", "required")
	}
	if l.Status != "sale" && l.Status != "rent" {
		add("status", "must be sale or rent")
	}
	if l.Price <= 0 {
		add("price", "must be positive")
	}
	if (l.Lat == nil) != (l.Lon == nil) {
		add("location", "latitude and longitude must be set together")
	}

	variants := 0
	for _, set := range []bool{l.RealEstate != nil, l.Vehicle != nil, l.Land != nil, l.Workplace != nil} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		add("details", "exactly one subtype detail set is required")
	} else if l.Details() == nil {
		add("details", "detail set does not match kind "+string(l.Kind))
	} else {
		switch l.Kind {
		case domain.KindRealEstate:
			if l.RealEstate.AreaM2 <= 0 {
				add("area_m2", "required")
			}
		case domain.KindVehicle:
			if l.Vehicle.Brand == "" {
				add("brand", "required")
			}
			if l.Vehicle.Model == "" {
				add("model", "required")
			}
			if l.Vehicle.Year < 1900 {
				add("year", "required")
			}
		case domain.KindLand:
			if l.Land.AreaM2 <= 0 {
				add("area_m2", "required")
			}
		case domain.KindWorkplace:
			if l.Workplace.AreaM2 <= 0 {
				add("area_m2", "required")
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
