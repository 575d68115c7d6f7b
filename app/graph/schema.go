// Package graph exposes a read-only GraphQL view of the catalogue at
// POST /graphql. Queries go through the same service layer as the REST
// handlers, so list results are cached and shaped identically.
package graph

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/app/repositories"
	"github.com/shashiranjanraj/myshop/app/services"
	"github.com/shashiranjanraj/myshop/pkg/pagination"
	"github.com/shashiranjanraj/myshop/pkg/response"
)

var imageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductImage",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.Int},
		"url":        &graphql.Field{Type: graphql.String},
		"is_primary": &graphql.Field{Type: graphql.Boolean},
		"sort_order": &graphql.Field{Type: graphql.Int},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"stock":       &graphql.Field{Type: graphql.Int},
		"sku":         &graphql.Field{Type: graphql.String},
		"images":      &graphql.Field{Type: graphql.NewList(imageType)},
		"is_available": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				product, _ := p.Source.(models.Product)
				return product.IsAvailable(), nil
			},
		},
	},
})

var statisticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Statistics",
	Fields: graphql.Fields{
		"total_products":     &graphql.Field{Type: graphql.Int},
		"average_price":      &graphql.Field{Type: graphql.Float},
		"total_stock":        &graphql.Field{Type: graphql.Int},
		"inventory_value":    &graphql.Field{Type: graphql.Float},
		"out_of_stock_count": &graphql.Field{Type: graphql.Int},
	},
})

// NewSchema builds the read-only query schema over the product service.
func NewSchema(products *services.ProductService) (graphql.Schema, error) {
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"priceMin": &graphql.ArgumentConfig{Type: graphql.Float},
					"priceMax": &graphql.ArgumentConfig{Type: graphql.Float},
					"ordering": &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int},
					"pageSize": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := filterFromArgs(p.Args)
					params := paramsFromArgs(p.Args)

					result, err := products.List(filter, params)
					if err != nil {
						return nil, err
					}
					return listData(result), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					return products.Get(uint(id))
				},
			},
			"statistics": &graphql.Field{
				Type: statisticsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return products.Statistics()
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}

func filterFromArgs(args map[string]interface{}) repositories.ProductFilter {
	var f repositories.ProductFilter
	if v, ok := args["search"].(string); ok {
		f.Search = v
	}
	if v, ok := args["priceMin"].(float64); ok {
		f.PriceMin = &v
	}
	if v, ok := args["priceMax"].(float64); ok {
		f.PriceMax = &v
	}
	if v, ok := args["ordering"].(string); ok {
		f.Ordering = v
	}
	return f
}

func paramsFromArgs(args map[string]interface{}) pagination.Params {
	p := pagination.DefaultParams()
	if v, ok := args["page"].(int); ok && v > 0 {
		p.Page = v
	}
	if v, ok := args["pageSize"].(int); ok && v > 0 {
		p.PerPage = min(v, pagination.MaxPerPage)
	}
	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// listData unwraps the cached page payload into a product slice.
func listData(result pagination.Result) []models.Product {
	switch v := result.Data.(type) {
	case []models.Product:
		return v
	case *[]models.Product:
		return *v
	default:
		return nil
	}
}

// Handler serves POST /graphql with a {query, variables} body.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
