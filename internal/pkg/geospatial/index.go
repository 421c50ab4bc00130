package geospatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// pointTolerance is the half-width of the rectangle stored for each point.
	pointTolerance = 1e-9
	// queryPadding widens query rectangles so zero-area boxes are accepted by
	// rtreego; callers re-check candidates with an exact predicate.
	queryPadding = 1e-7
)

// Point is a coordinate paired with its insertion ordinal.
type Point struct {
	Ordinal int
	Lat     float64
	Lon     float64
}

type spatialItem struct {
	ordinal int
	rect    *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is an R-tree over points. It is built once and read concurrently
// without locking; there is no insert after NewIndex returns.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over points.
func NewIndex(points []Point) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for _, p := range points {
		rect := rtreego.Point{p.Lat, p.Lon}.ToRect(pointTolerance)
		tree.Insert(&spatialItem{ordinal: p.Ordinal, rect: rect})
	}
	return &Index{tree: tree, size: len(points)}
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	return ix.size
}

// Candidates returns the ordinals of points whose stored rectangle intersects
// the query box, sorted ascending. Inverted boxes yield nil.
func (ix *Index) Candidates(minLat, minLon, maxLat, maxLon float64) []int {
	if ix == nil || ix.size == 0 || minLat > maxLat || minLon > maxLon {
		return nil
	}

	origin := rtreego.Point{minLat - queryPadding, minLon - queryPadding}
	lengths := []float64{maxLat - minLat + 2*queryPadding, maxLon - minLon + 2*queryPadding}
	bounds, err := rtreego.NewRect(origin, lengths)
	if err != nil {
		return nil
	}

	results := ix.tree.SearchIntersect(bounds)
	ordinals := make([]int, 0, len(results))
	for _, r := range results {
		if item, ok := r.(*spatialItem); ok {
			ordinals = append(ordinals, item.ordinal)
		}
	}
	sort.Ints(ordinals)
	return ordinals
}
