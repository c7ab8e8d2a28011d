package domain

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a point of interest near a listing. Distance is always
// derived from the origin via the haversine formula, never taken
// from the geodata API.
type Place struct {
	ID       int64   `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`     // place category id
	Distance float64 `json:"distance"` // meters, rounded
}
