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
// Hotel tools
// ===================================

const (
	ToolSearchHotels = "search_hotels"
	ToolBookHotel    = "book_hotel"
	ToolUpdateHotel  = "update_hotel"
	ToolCancelHotel  = "cancel_hotel"
)

type SearchHotelsInput struct {
	Location  string `json:"location,omitempty"`
	Name      string `json:"name,omitempty"`
	PriceTier string `json:"price_tier,omitempty"`
}

type SearchHotelsOutput struct {
	Hotels []travel.Hotel `json:"hotels"`
	Total  int            `json:"total"`
}

func createSearchHotelsTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchHotels,
			Desc: "Search for hotels by location, name, or price tier. All filters are optional and match partial text.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location":   {Type: "string", Desc: "City where the hotel is needed, e.g. Zurich."},
				"name":       {Type: "string", Desc: "Hotel name."},
				"price_tier": {Type: "string", Desc: "Price tier, e.g. Midscale, Upscale, Luxury."},
			}),
		},
		func(ctx context.Context, in *SearchHotelsInput) (*SearchHotelsOutput, error) {
			hotels, err := store.SearchHotels(ctx, travel.HotelQuery{
				Location:  in.Location,
				Name:      in.Name,
				PriceTier: in.PriceTier,
			})
			if err != nil {
				return nil, err
			}
			return &SearchHotelsOutput{Hotels: hotels, Total: len(hotels)}, nil
		},
	)
}

type HotelIDInput struct {
	HotelID int64 `json:"hotel_id"`
}

func createBookHotelTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolBookHotel,
			Desc: "Book a hotel by its id from search_hotels results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"hotel_id": {Type: "number", Desc: "The id of the hotel to book.", Required: true},
			}),
		},
		func(ctx context.Context, in *HotelIDInput) (string, error) {
			if err := store.BookHotel(ctx, in.HotelID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Hotel %d successfully booked.", in.HotelID), nil
		},
	)
}

type UpdateHotelInput struct {
	HotelID      int64  `json:"hotel_id"`
	CheckinDate  string `json:"checkin_date,omitempty"`
	CheckoutDate string `json:"checkout_date,omitempty"`
}

func createUpdateHotelTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateHotel,
			Desc: "Change the check-in and/or check-out date of an existing hotel booking.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"hotel_id":      {Type: "number", Desc: "The id of the hotel booking to update.", Required: true},
				"checkin_date":  {Type: "string", Desc: "New check-in date, YYYY-MM-DD."},
				"checkout_date": {Type: "string", Desc: "New check-out date, YYYY-MM-DD."},
			}),
		},
		func(ctx context.Context, in *UpdateHotelInput) (string, error) {
			if err := store.UpdateHotel(ctx, in.HotelID, in.CheckinDate, in.CheckoutDate); err != nil {
				return "", err
			}
			return fmt.Sprintf("Hotel %d successfully updated.", in.HotelID), nil
		},
	)
}

func createCancelHotelTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCancelHotel,
			Desc: "Cancel an existing hotel booking by its id.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"hotel_id": {Type: "number", Desc: "The id of the hotel booking to cancel.", Required: true},
			}),
		},
		func(ctx context.Context, in *HotelIDInput) (string, error) {
			if err := store.CancelHotel(ctx, in.HotelID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Hotel %d successfully cancelled.", in.HotelID), nil
		},
	)
}
