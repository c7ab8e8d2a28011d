package domain

import "time"

// Kind discriminates the listing subtypes. Exactly one of the
// Details pointers on Listing is set and it must match Kind.
type Kind string

const (
	KindRealEstate Kind = "real_estate"
	KindVehicle    Kind = "vehicle"
	KindLand       Kind = "land"
	KindWorkplace  Kind = "workplace"
)

func (k Kind) Valid() bool {
	switch k {
	case KindRealEstate, KindVehicle, KindLand, KindWorkplace:
		return true
	}
	return false
}

type Listing struct {
	ID       int64    `json:"id"`
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	City     string   `json:"city"`
	District string   `json:"district,omitempty"`
	Category string   `json:"category,omitempty"`
	Status   string   `json:"status"` // sale|rent
	Price    int64    `json:"price"`
	Currency string   `json:"currency,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Images   []string `json:"images,omitempty"`
	RawJSON  []byte   `json:"-"` // full source payload when imported

	RealEstate *RealEstateDetails `json:"realEstate,omitempty"`
	Vehicle    *VehicleDetails    `json:"vehicle,omitempty"`
	Land       *LandDetails       `json:"land,omitempty"`
	Workplace  *WorkplaceDetails  `json:"workplace,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RealEstateDetails struct {
	Rooms       string `json:"rooms,omitempty"`
	AreaM2      int    `json:"area_m2,omitempty"`
	Floor       *int   `json:"floor,omitempty"`
	BuildingAge *int   `json:"building_age,omitempty"`
	Heating     string `json:"heating,omitempty"`
	Furnished   bool   `json:"furnished,omitempty"`
}

type VehicleDetails struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty"`
	Mileage  int    `json:"mileage,omitempty"`
	Fuel     string `json:"fuel,omitempty"`
	Gearbox  string `json:"gearbox,omitempty"`
	Swappable bool  `json:"swappable,omitempty"`
}

type LandDetails struct {
	AreaM2   int    `json:"area_m2,omitempty"`
	Zoning   string `json:"zoning,omitempty"`
	ParcelNo string `json:"parcel_no,omitempty"`
	BlockNo  string `json:"block_no,omitempty"`
}

type WorkplaceDetails struct {
	AreaM2       int    `json:"area_m2,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	Staffed      bool   `json:"staffed,omitempty"`
}

// Details returns the variant struct matching Kind, or nil.
func (l *Listing) Details() any {
	switch l.Kind {
	case KindRealEstate:
		if l.RealEstate != nil {
			return l.RealEstate
		}
	case KindVehicle:
		if l.Vehicle != nil {
			return l.Vehicle
		}
	case KindLand:
		if l.Land != nil {
			return l.Land
		}
	case KindWorkplace:
		if l.Workplace != nil {
			return l.Workplace
		}
	}
	return nil
}
