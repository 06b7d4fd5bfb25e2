package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/travel"
)

// ===================================
// Excursion tools
// ===================================

const (
	ToolSearchExcursions = "search_trip_recommendations"
	ToolBookExcursion    = "book_excursion"
	ToolUpdateExcursion  = "update_excursion"
	ToolCancelExcursion  = "cancel_excursion"
)

type SearchExcursionsInput struct {
	Location string `json:"location,omitempty"`
	Name     string `json:"name,omitempty"`
	Keywords string `json:"keywords,omitempty"`
}

type SearchExcursionsOutput struct {
	Excursions []travel.Excursion `json:"excursions"`
	Total      int                `json:"total"`
}

func createSearchExcursionsTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchExcursions,
			Desc: "Search for trip recommendations by location, name, or comma-separated keywords such as 'scenic, outdoor'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {Type: "string", Desc: "City or region for the trip."},
				"name":     {Type: "string", Desc: "Name of the recommended trip."},
				"keywords": {Type: "string", Desc: "Comma-separated keywords to match, e.g. 'mountain, family'."},
			}),
		},
		func(ctx context.Context, in *SearchExcursionsInput) (*SearchExcursionsOutput, error) {
			trips, err := store.SearchExcursions(ctx, travel.ExcursionQuery{
				Location: in.Location,
				Name:     in.Name,
				Keywords: in.Keywords,
			})
			if err != nil {
				return nil, err
			}
			return &SearchExcursionsOutput{Excursions: trips, Total: len(trips)}, nil
		},
	)
}

type ExcursionIDInput struct {
	RecommendationID int64 `json:"recommendation_id"`
}

func createBookExcursionTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolBookExcursion,
			Desc: "Book an excursion by its recommendation id from search results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"recommendation_id": {Type: "number", Desc: "The id of the trip recommendation to book.", Required: true},
			}),
		},
		func(ctx context.Context, in *ExcursionIDInput) (string, error) {
			if err := store.BookExcursion(ctx, in.RecommendationID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Trip recommendation %d successfully booked.", in.RecommendationID), nil
		},
	)
}

type UpdateExcursionInput struct {
	RecommendationID int64  `json:"recommendation_id"`
	Details          string `json:"details"`
}

func createUpdateExcursionTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateExcursion,
			Desc: "Update the details of a booked excursion, e.g. special requests or timing notes.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"recommendation_id": {Type: "number", Desc: "The id of the trip recommendation to update.", Required: true},
				"details":           {Type: "string", Desc: "The replacement details text.", Required: true},
			}),
		},
		func(ctx context.Context, in *UpdateExcursionInput) (string, error) {
			if err := store.UpdateExcursion(ctx, in.RecommendationID, in.Details); err != nil {
				return "", err
			}
			return fmt.Sprintf("Trip recommendation %d successfully updated.", in.RecommendationID), nil
		},
	)
}

func createCancelExcursionTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCancelExcursion,
			Desc: "Cancel a booked excursion by its recommendation id.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"recommendation_id": {Type: "number", Desc: "The id of the trip recommendation to cancel.", Required: true},
			}),
		},
		func(ctx context.Context, in *ExcursionIDInput) (string, error) {
			if err := store.CancelExcursion(ctx, in.RecommendationID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Trip recommendation %d successfully cancelled.", in.RecommendationID), nil
		},
	)
}
