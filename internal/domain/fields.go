package domain

// Field describes one form input of the create-listing form.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // text|number|select|checkbox
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

var commonFields = []Field{
	{Name: "title", Type: "text", Required: true},
	{Name: "city", Type: "text", Required: true},
	{Name: "district", Type: "text"},
	{Name: "status", Type: "select", Required: true, Options: []string{"sale", "rent"}},
	{Name: "price", Type: "number", Required: true},
	{Name: "currency", Type: "select", Options: []string{"TRY", "USD", "EUR"}},
}

var subtypeFields = map[Kind][]Field{
	KindRealEstate: {
		{Name: "rooms", Type: "select", Options: []string{"1+0", "1+1", "2+1", "3+1", "4+1", "5+"}},
		{Name: "area_m2", Type: "number", Required: true},
		{Name: "floor", Type: "number"},
		{Name: "building_age", Type: "number"},
		{Name: "heating", Type: "select", Options: []string{"none", "stove", "central", "combi", "underfloor"}},
		{Name: "furnished", Type: "checkbox"},
	},
	KindVehicle: {
		{Name: "brand", Type: "text", Required: true},
		{Name: "model", Type: "text", Required: true},
		{Name: "year", Type: "number", Required: true},
		{Name: "mileage", Type: "number"},
		{Name: "fuel", Type: "select", Options: []string{"gasoline", "diesel", "lpg", "electric", "hybrid"}},
		{Name: "gearbox", Type: "select", Options: []string{"manual", "automatic"}},
		{Name: "swappable", Type: "checkbox"},
	},
	KindLand: {
		{Name: "area_m2", Type: "number", Required: true},
		{Name: "zoning", Type: "select", Options: []string{"residential", "commercial", "field", "vineyard"}},
		{Name: "parcel_no", Type: "text"},
		{Name: "block_no", Type: "text"},
	},
	KindWorkplace: {
		{Name: "area_m2", Type: "number", Required: true},
		{Name: "business_type", Type: "text"},
		{Name: "staffed", Type: "checkbox"},
	},
}

// FieldsFor is the single dispatch point mapping a listing subtype to the
// form field set rendered for it: common fields first, then the variant's own.
func FieldsFor(k Kind) []Field {
	sub, ok := subtypeFields[k]
	if !ok {
		return nil
	}
	out := make([]Field, 0, len(commonFields)+len(sub))
	out = append(out, commonFields...)
	out = append(out, sub...)
	return out
}
