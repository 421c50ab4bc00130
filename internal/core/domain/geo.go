package domain

// GeoPoint represents a geographic coordinate (WGS 84) as sent by the map client.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents a map viewport. Field names follow the Leaflet
// LatLngBounds serialization used by the front end.
type Bounds struct {
	NorthEast GeoPoint `json:"_northEast"`
	SouthWest GeoPoint `json:"_southWest"`
}

// Contains reports whether p lies inside the closed rectangle. No antimeridian
// handling: an inverted rectangle contains nothing.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Inverted reports whether the south-west corner lies north or east of the
// north-east corner on either axis.
func (b Bounds) Inverted() bool {
	return b.SouthWest.Lat > b.NorthEast.Lat || b.SouthWest.Lng > b.NorthEast.Lng
}
