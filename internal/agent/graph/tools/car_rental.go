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
// Car rental tools
// ===================================

const (
	ToolSearchCarRentals = "search_car_rentals"
	ToolBookCarRental    = "book_car_rental"
	ToolUpdateCarRental  = "update_car_rental"
	ToolCancelCarRental  = "cancel_car_rental"
)

type SearchCarRentalsInput struct {
	Location  string `json:"location,omitempty"`
	Name      string `json:"name,omitempty"`
	PriceTier string `json:"price_tier,omitempty"`
}

type SearchCarRentalsOutput struct {
	Rentals []travel.Rental `json:"rentals"`
	Total   int             `json:"total"`
}

func createSearchCarRentalsTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCarRentals,
			Desc: "Search for car rental offers by location, company name, or price tier. All filters are optional and match partial text.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location":   {Type: "string", Desc: "City where the car is needed, e.g. Basel."},
				"name":       {Type: "string", Desc: "Rental company name."},
				"price_tier": {Type: "string", Desc: "Price tier, e.g. Economy, Midsize, Luxury."},
			}),
		},
		func(ctx context.Context, in *SearchCarRentalsInput) (*SearchCarRentalsOutput, error) {
			rentals, err := store.SearchCarRentals(ctx, travel.RentalQuery{
				Location:  in.Location,
				Name:      in.Name,
				PriceTier: in.PriceTier,
			})
			if err != nil {
				return nil, err
			}
			return &SearchCarRentalsOutput{Rentals: rentals, Total: len(rentals)}, nil
		},
	)
}

type RentalIDInput struct {
	RentalID int64 `json:"rental_id"`
}

func createBookCarRentalTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolBookCarRental,
			Desc: "Book a car rental by its id from search_car_rentals results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"rental_id": {Type: "number", Desc: "The id of the rental to book.", Required: true},
			}),
		},
		func(ctx context.Context, in *RentalIDInput) (string, error) {
			if err := store.BookCarRental(ctx, in.RentalID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Car rental %d successfully booked.", in.RentalID), nil
		},
	)
}

type UpdateCarRentalInput struct {
	RentalID  int64  `json:"rental_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func createUpdateCarRentalTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateCarRental,
			Desc: "Change the start and/or end date of an existing car rental reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"rental_id":  {Type: "number", Desc: "The id of the rental to update.", Required: true},
				"start_date": {Type: "string", Desc: "New pick-up date, YYYY-MM-DD."},
				"end_date":   {Type: "string", Desc: "New drop-off date, YYYY-MM-DD."},
			}),
		},
		func(ctx context.Context, in *UpdateCarRentalInput) (string, error) {
			if err := store.UpdateCarRental(ctx, in.RentalID, in.StartDate, in.EndDate); err != nil {
				return "", err
			}
			return fmt.Sprintf("Car rental %d successfully updated.", in.RentalID), nil
		},
	)
}

func createCancelCarRentalTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCancelCarRental,
			Desc: "Cancel an existing car rental reservation by its id.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"rental_id": {Type: "number", Desc: "The id of the rental to cancel.", Required: true},
			}),
		},
		func(ctx context.Context, in *RentalIDInput) (string, error) {
			if err := store.CancelCarRental(ctx, in.RentalID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Car rental %d successfully cancelled.", in.RentalID), nil
		},
	)
}
