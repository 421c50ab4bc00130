package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
)

// viewportRequest is the JSON body sent by the map client.
type viewportRequest struct {
	Bounds         *viewportBounds `json:"bounds"`
	Term           string          `json:"term"`
	Company        string          `json:"company"`
	Sort           string          `json:"sort"`
	PWD            bool            `json:"pwd"`
	WorkplaceTypes []string        `json:"workplaceTypes"`
}

type viewportBounds struct {
	NorthEast *domain.GeoPoint `json:"_northEast"`
	SouthWest *domain.GeoPoint `json:"_southWest"`
}

// toQuery converts the body into a domain query. Bounds lacking either
// corner count as missing.
func (r viewportRequest) toQuery() domain.Query {
	q := domain.Query{
		Term:           r.Term,
		Company:        r.Company,
		Sort:           r.Sort,
		PWD:            r.PWD,
		WorkplaceTypes: r.WorkplaceTypes,
	}
	if r.Bounds != nil && r.Bounds.NorthEast != nil && r.Bounds.SouthWest != nil {
		q.Bounds = &domain.Bounds{NorthEast: *r.Bounds.NorthEast, SouthWest: *r.Bounds.SouthWest}
	}
	return q
}

var boundsParams = [4]string{"ne_lat", "ne_lng", "sw_lat", "sw_lng"}

// boundsFromQuery reads ne_lat, ne_lng, sw_lat and sw_lng. It returns nil
// when any of them is absent and an error naming the first unparsable one.
func boundsFromQuery(c *fiber.Ctx) (*domain.Bounds, string) {
	var v [4]float64
	for i, name := range boundsParams {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil, ""
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, name
		}
		v[i] = f
	}
	return &domain.Bounds{
		NorthEast: domain.GeoPoint{Lat: v[0], Lng: v[1]},
		SouthWest: domain.GeoPoint{Lat: v[2], Lng: v[3]},
	}, ""
}

// splitList splits a comma-separated query value, dropping empty items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// legacyBody renders an outcome with the keys the map client reads:
// gupy_url on success, error for missing bounds, message otherwise.
func legacyBody(out domain.Outcome) fiber.Map {
	body := fiber.Map{"outcome": out.Kind}
	switch out.Kind {
	case domain.OutcomeSuccess:
		body["gupy_url"] = out.URL
	case domain.OutcomeMissingBounds:
		body["error"] = out.Message
	default:
		body["message"] = out.Message
	}
	return body
}
