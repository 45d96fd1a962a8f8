package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"place_id":       &graphql.Field{Type: graphql.String},
			"title":          &graphql.Field{Type: graphql.String},
			"subtitle":       &graphql.Field{Type: graphql.String},
			"display_name":   &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: coordinateType},
			"distance_km":    &graphql.Field{Type: graphql.Float},
			"distance_label": &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteEstimate",
		Fields: graphql.Fields{
			"mode":             &graphql.Field{Type: graphql.String},
			"duration_seconds": &graphql.Field{Type: graphql.Float},
			"duration_text":    &graphql.Field{Type: graphql.String},
			"distance_km":      &graphql.Field{Type: graphql.Float},
			"source":           &graphql.Field{Type: graphql.String},
			"points":           &graphql.Field{Type: graphql.NewList(coordinateType)},
		},
	})

	pairArgs := func(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"from_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"from_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"to_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"to_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search places, nearest first",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref := domain.Coordinate{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if !ref.Valid() {
						return nil, domain.ErrInvalidCoordinate
					}
					places, err := deps.Search.Search(p.Context, p.Args["query"].(string), &ref)
					if err != nil {
						return nil, err
					}
					views := make([]PlaceView, 0, len(places))
					for _, pl := range places {
						views = append(views, newPlaceView(pl))
					}
					return views, nil
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Estimate travel time for a transport mode",
				Args: pairArgs(graphql.FieldConfigArgument{
					"mode": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.DefaultMode)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, to, err := pairFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					mode, err := domain.ParseTransportMode(p.Args["mode"].(string))
					if err != nil {
						return nil, err
					}
					est, err := deps.Routes.Estimate(p.Context, from, to, mode, nil)
					if err != nil {
						return nil, err
					}
					return newRouteView(est), nil
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance in kilometers",
				Args:        pairArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, to, err := pairFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return geospatial.DistanceKm(from, to), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pairFromArgs(args map[string]interface{}) (from, to domain.Coordinate, err error) {
	from = domain.Coordinate{Lat: args["from_lat"].(float64), Lon: args["from_lon"].(float64)}
	to = domain.Coordinate{Lat: args["to_lat"].(float64), Lon: args["to_lon"].(float64)}
	if !from.Valid() || !to.Valid() {
		return from, to, domain.ErrInvalidCoordinate
	}
	return from, to, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
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
