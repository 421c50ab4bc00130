package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
)

// RootBanner is served at GET /.
const RootBanner = "API do Jobb Mapper está no ar."

// RootHandler answers the uptime probe used by the front end host.
func RootHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(RootBanner)
	}
}

// CitiesInViewHandler serves POST /get-cities-in-view. Every outcome is a
// 200 with the legacy keys; only an unparsable body is a 400.
func CitiesInViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req viewportRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid JSON body")
			}
		}

		out := deps.Search.BuildURL(c.UserContext(), req.toQuery())
		LoggerFromCtx(c.UserContext()).Debug("viewport query",
			"outcome", out.Kind, "matches", out.Matches)

		return c.JSON(legacyBody(out))
	}
}

// SearchHandler serves GET /v1/search, the query-string form of the
// viewport query. It returns the typed outcome.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, bad := boundsFromQuery(c)
		if bad != "" {
			return errBadRequest(c, bad+" must be a number")
		}

		q := domain.Query{
			Bounds:         bounds,
			Term:           c.Query("term"),
			Company:        c.Query("company"),
			Sort:           c.Query("sort"),
			PWD:            c.QueryBool("pwd", false),
			WorkplaceTypes: splitList(c.Query("workplace_types")),
		}
		return c.JSON(deps.Search.BuildURL(c.UserContext(), q))
	}
}

// MunicipalitiesHandler serves GET /v1/municipalities: the raw filter result
// for a viewport, paginated.
func MunicipalitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, bad := boundsFromQuery(c)
		if bad != "" {
			return errBadRequest(c, bad+" must be a number")
		}
		if bounds == nil {
			return errBadRequest(c, "ne_lat, ne_lng, sw_lat and sw_lng are required")
		}

		matches := deps.Search.MunicipalitiesInView(*bounds)
		pg, page := paginate(c, matches)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// RegionsHandler serves GET /v1/regions.
func RegionsHandler() fiber.Handler {
	regions := domain.Regions()
	return func(c *fiber.Ctx) error {
		return c.JSON(regions)
	}
}

// RegionHandler serves GET /v1/regions/:code.
func RegionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := c.ParamsInt("code")
		if err != nil {
			return errBadRequest(c, "code must be a number")
		}
		abbr, ok := domain.RegionAbbreviation(code)
		if !ok {
			return errNotFound(c, "unknown region code")
		}
		return c.JSON(domain.Region{
			Code:         domain.NormalizeRegionCode(code),
			Abbreviation: abbr,
			Name:         domain.ResolveRegion(code),
		})
	}
}
