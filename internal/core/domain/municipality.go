package domain

import "errors"

var (
	// ErrDownloadFailed means the remote municipality table could not be fetched.
	ErrDownloadFailed = errors.New("dataset download failed")
	// ErrSchemaMismatch means the municipality table lacks a required column.
	ErrSchemaMismatch = errors.New("dataset schema mismatch")
)

// Municipality is one row of the municipality table.
type Municipality struct {
	Name       string  `json:"name"`
	RegionCode int     `json:"region_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Location returns the municipality coordinates as a GeoPoint.
func (m Municipality) Location() GeoPoint {
	return GeoPoint{Lat: m.Latitude, Lng: m.Longitude}
}

// SpatialIndex returns insertion ordinals of rows that may fall inside a
// rectangle, in ascending order. Results are a superset; Dataset re-checks
// each candidate.
type SpatialIndex interface {
	Candidates(minLat, minLng, maxLat, maxLng float64) []int
}

// Dataset is the immutable municipality snapshot shared by every request.
// It is built once at startup and never mutated afterwards.
type Dataset struct {
	rows  []Municipality
	index SpatialIndex
}

// NewDataset wraps rows into a snapshot. index may be nil, in which case
// Within falls back to a linear scan.
func NewDataset(rows []Municipality, index SpatialIndex) *Dataset {
	return &Dataset{rows: rows, index: index}
}

// EmptyDataset returns a snapshot with no rows.
func EmptyDataset() *Dataset {
	return &Dataset{}
}

// Len returns the number of municipalities.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Empty reports whether the snapshot holds no rows.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Municipalities returns a copy of all rows in insertion order.
func (d *Dataset) Municipalities() []Municipality {
	if d.Empty() {
		return nil
	}
	out := make([]Municipality, len(d.rows))
	copy(out, d.rows)
	return out
}

// Within returns the municipalities inside b in insertion order.
func (d *Dataset) Within(b Bounds) []Municipality {
	if d.Empty() || b.Inverted() {
		return nil
	}

	var out []Municipality
	if d.index == nil {
		for _, m := range d.rows {
			if b.Contains(m.Location()) {
				out = append(out, m)
			}
		}
		return out
	}

	for _, i := range d.index.Candidates(b.SouthWest.Lat, b.SouthWest.Lng, b.NorthEast.Lat, b.NorthEast.Lng) {
		if i < 0 || i >= len(d.rows) {
			continue
		}
		if m := d.rows[i]; b.Contains(m.Location()) {
			out = append(out, m)
		}
	}
	return out
}
