package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/driverdash/internal/core/reconcile"
)

// buildSchema creates the GraphQL schema wired to our services. Fields resolve
// through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":                     &graphql.Field{Type: graphql.String},
			"client_name":            &graphql.Field{Type: graphql.String},
			"pickup_label":           &graphql.Field{Type: graphql.String},
			"dropoff_label":          &graphql.Field{Type: graphql.String},
			"status":                 &graphql.Field{Type: graphql.String},
			"pickup":                 &graphql.Field{Type: geoPointType},
			"destination":            &graphql.Field{Type: geoPointType},
			"driver":                 &graphql.Field{Type: geoPointType},
			"estimated_distance_km":  &graphql.Field{Type: graphql.Float},
			"estimated_duration_min": &graphql.Field{Type: graphql.Float},
			"length_category":        &graphql.Field{Type: graphql.String},
		},
	})

	serviceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Service",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"type":               &graphql.Field{Type: graphql.String},
			"type_label":         &graphql.Field{Type: graphql.String},
			"name":               &graphql.Field{Type: graphql.String},
			"area_label":         &graphql.Field{Type: graphql.String},
			"location":           &graphql.Field{Type: geoPointType},
			"is_24h":             &graphql.Field{Type: graphql.Boolean},
			"has_towing":         &graphql.Field{Type: graphql.Boolean},
			"distance_km":        &graphql.Field{Type: graphql.Float},
			"estimated_time_min": &graphql.Field{Type: graphql.Float},
		},
	})

	reconciliationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Reconciliation",
		Fields: graphql.Fields{
			"final_path":            &graphql.Field{Type: graphql.NewList(geoPointType)},
			"auto_selected_trip_id": &graphql.Field{Type: graphql.String},
			"matched_trip_id":       &graphql.Field{Type: graphql.String},
			"best_score_km":         &graphql.Field{Type: graphql.Float},
			"second_best_score_km":  &graphql.Field{Type: graphql.Float},
			"inverted":              &graphql.Field{Type: graphql.Boolean},
			"snapped_start":         &graphql.Field{Type: graphql.Boolean},
			"snapped_end":           &graphql.Field{Type: graphql.Boolean},
			"dropped_points":        &graphql.Field{Type: graphql.Int},
		},
	})

	// Raw paths are lists of number pairs; their axis order is not assumed.
	rawPathArg := graphql.NewNonNull(graphql.NewList(graphql.NewList(graphql.Float)))

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "List all trips",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Trips.List(p.Context)
				},
			},
			"trip": &graphql.Field{
				Type:        tripType,
				Description: "Get a trip by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Trips.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"services": &graphql.Field{
				Type:        graphql.NewList(serviceType),
				Description: "List services, optionally of one type",
				Args: graphql.FieldConfigArgument{
					"type": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Services.List(p.Context, p.Args["type"].(string))
				},
			},
			"servicesOnRoute": &graphql.Field{
				Type:        graphql.NewList(serviceType),
				Description: "Services near a path, closest first",
				Args: graphql.FieldConfigArgument{
					"path":      &graphql.ArgumentConfig{Type: rawPathArg},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					path := reconcile.Normalize(rawPath(p.Args["path"]))
					return deps.Services.AlongPath(p.Context, path, p.Args["radius_km"].(float64), nil)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"reconcile": &graphql.Field{
				Type:        reconciliationType,
				Description: "Reconcile a raw path against the current trips",
				Args: graphql.FieldConfigArgument{
					"path":             &graphql.ArgumentConfig{Type: rawPathArg},
					"selected_trip_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.Reconcile(p.Context, rawPath(p.Args["path"]), p.Args["selected_trip_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func rawPath(arg interface{}) []any {
	list, _ := arg.([]interface{})
	return list
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

