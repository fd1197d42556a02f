package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	labelCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LabelCount",
		Fields: graphql.Fields{
			"label": &graphql.Field{Type: graphql.String},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"rating": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(domain.PlaceRecord); ok && r.Rating != nil {
						return *r.Rating, nil
					}
					return nil, nil
				},
			},
			"rating_count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(domain.PlaceRecord); ok && r.RatingCount != nil {
						return *r.RatingCount, nil
					}
					return nil, nil
				},
			},
		},
	})

	snapshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Snapshot",
		Fields: graphql.Fields{
			"total_businesses": &graphql.Field{Type: graphql.Int},
			"area_km2":         &graphql.Field{Type: graphql.Float},
			"business_density": &graphql.Field{Type: graphql.Float},
			"average_rating":   &graphql.Field{Type: graphql.Float},
			"top_businesses":   &graphql.Field{Type: graphql.NewList(placeType)},
			"coordinates":      &graphql.Field{Type: graphql.NewList(geoPointType)},
			"categories": &graphql.Field{
				Type: graphql.NewList(labelCountType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.BusinessSnapshot).Categories(), nil
				},
			},
			"prices": &graphql.Field{
				Type: graphql.NewList(labelCountType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.BusinessSnapshot).Prices(), nil
				},
			},
		},
	})

	sectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Section",
		Fields: graphql.Fields{
			"header": &graphql.Field{Type: graphql.String},
			"body":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	analysisType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Analysis",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"user_id":  &graphql.Field{Type: graphql.String},
			"center":   &graphql.Field{Type: geoPointType},
			"sections": &graphql.Field{Type: graphql.NewList(sectionType)},
			"language": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Analysis).Narrative.Language, nil
				},
			},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(p.Source.(domain.Analysis).Narrative.Kind), nil
				},
			},
			"created_at": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Analysis).CreatedAt, nil
				},
			},
		},
	})

	boundsArgs := graphql.FieldConfigArgument{
		"north":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"south":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"east":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"west":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"session_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"snapshot": &graphql.Field{
				Type:        snapshotType,
				Description: "Business snapshot of a bounding box",
				Args:        boundsArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					region, err := domain.NewRegion(
						p.Args["north"].(float64),
						p.Args["south"].(float64),
						p.Args["east"].(float64),
						p.Args["west"].(float64),
					)
					if err != nil {
						return nil, err
					}
					snap, _, err := deps.Analyses.Snapshot(p.Context, p.Args["session_id"].(string), region)
					if err != nil {
						return nil, err
					}
					return snap, nil
				},
			},
			"analyses": &graphql.Field{
				Type:        graphql.NewList(analysisType),
				Description: "Stored analyses of a user, newest first",
				Args: graphql.FieldConfigArgument{
					"user_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"offset":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, _, err := deps.Analyses.History(p.Context,
						p.Args["user_id"].(string), p.Args["offset"].(int), p.Args["limit"].(int))
					return items, err
				},
			},
			"sections": &graphql.Field{
				Type:        graphql.NewList(sectionType),
				Description: "Split a narrative into display sections",
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return usecases.FormatSections(p.Args["text"].(string)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
