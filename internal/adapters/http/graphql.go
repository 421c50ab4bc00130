package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the search service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	boundsInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BoundsInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"northEast": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(geoPointInput)},
			"southWest": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(geoPointInput)},
		},
	})

	municipalityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Municipality",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"region_code": &graphql.Field{Type: graphql.Int},
			"latitude":    &graphql.Field{Type: graphql.Float},
			"longitude":   &graphql.Field{Type: graphql.Float},
			"region": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, ok := p.Source.(domain.Municipality)
					if !ok {
						return nil, nil
					}
					return domain.ResolveRegion(m.RegionCode), nil
				},
			},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"code":         &graphql.Field{Type: graphql.String},
			"abbreviation": &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
		},
	})

	outcomeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchOutcome",
		Fields: graphql.Fields{
			"outcome": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if o, ok := p.Source.(domain.Outcome); ok {
						return string(o.Kind), nil
					}
					return nil, nil
				},
			},
			"url":     &graphql.Field{Type: graphql.String},
			"message": &graphql.Field{Type: graphql.String},
			"matches": &graphql.Field{Type: graphql.Int},
			"limit":   &graphql.Field{Type: graphql.Int},
			"region":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"municipalitiesInView": &graphql.Field{
				Type: graphql.NewList(municipalityType),
				Args: graphql.FieldConfigArgument{
					"bounds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(boundsInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, err := boundsArg(p.Args["bounds"])
					if err != nil {
						return nil, err
					}
					return deps.Search.MunicipalitiesInView(*b), nil
				},
			},
			"jobSearchUrl": &graphql.Field{
				Type: outcomeType,
				Args: graphql.FieldConfigArgument{
					"bounds":         &graphql.ArgumentConfig{Type: boundsInput},
					"term":           &graphql.ArgumentConfig{Type: graphql.String},
					"company":        &graphql.ArgumentConfig{Type: graphql.String},
					"sort":           &graphql.ArgumentConfig{Type: graphql.String},
					"pwd":            &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"workplaceTypes": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := domain.Query{
						Term:    stringArg(p.Args, "term"),
						Company: stringArg(p.Args, "company"),
						Sort:    stringArg(p.Args, "sort"),
					}
					q.PWD, _ = p.Args["pwd"].(bool)
					if raw, ok := p.Args["workplaceTypes"].([]interface{}); ok {
						for _, v := range raw {
							if s, ok := v.(string); ok {
								q.WorkplaceTypes = append(q.WorkplaceTypes, s)
							}
						}
					}
					if raw, ok := p.Args["bounds"]; ok && raw != nil {
						b, err := boundsArg(raw)
						if err != nil {
							return nil, err
						}
						q.Bounds = b
					}
					return deps.Search.BuildURL(p.Context, q), nil
				},
			},
			"regions": &graphql.Field{
				Type: graphql.NewList(regionType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return domain.Regions(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func boundsArg(raw interface{}) (*domain.Bounds, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("bounds must be an object")
	}
	ne, err := pointArg(m["northEast"])
	if err != nil {
		return nil, err
	}
	sw, err := pointArg(m["southWest"])
	if err != nil {
		return nil, err
	}
	return &domain.Bounds{NorthEast: ne, SouthWest: sw}, nil
}

func pointArg(raw interface{}) (domain.GeoPoint, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return domain.GeoPoint{}, errors.New("corner must be an object")
	}
	lat, latOK := m["lat"].(float64)
	lng, lngOK := m["lng"].(float64)
	if !latOK || !lngOK {
		return domain.GeoPoint{}, errors.New("corner needs numeric lat and lng")
	}
	return domain.GeoPoint{Lat: lat, Lng: lng}, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
