package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/model"
	"github.com/tripdesk/server/internal/travel"
)

// ===================================
// Flight tools
// ===================================

const (
	ToolSearchFlights = "search_flights"
	ToolUpdateTicket  = "update_ticket_to_new_flight"
	ToolCancelTicket  = "cancel_ticket"
)

type SearchFlightsInput struct {
	DepartureAirport string `json:"departure_airport,omitempty"`
	ArrivalAirport   string `json:"arrival_airport,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	Limit            int    `json:"limit,omitempty"`
}

type SearchFlightsOutput struct {
	Flights []travel.Flight `json:"flights"`
	Total   int             `json:"total"`
}

func createSearchFlightsTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchFlights,
			Desc: "Search for scheduled flights by departure airport, arrival airport, and departure time window. All filters are optional; widen the window if a search returns nothing.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"departure_airport": {
					Type: "string",
					Desc: "IATA code of the departure airport, e.g. ZRH or BSL.",
				},
				"arrival_airport": {
					Type: "string",
					Desc: "IATA code of the arrival airport.",
				},
				"start_time": {
					Type: "string",
					Desc: "Earliest departure, RFC3339 timestamp.",
				},
				"end_time": {
					Type: "string",
					Desc: "Latest departure, RFC3339 timestamp.",
				},
				"limit": {
					Type: "number",
					Desc: "Maximum number of flights to return (default 20).",
				},
			}),
		},
		func(ctx context.Context, in *SearchFlightsInput) (*SearchFlightsOutput, error) {
			flights, err := store.SearchFlights(ctx, travel.FlightQuery{
				DepartureAirport: in.DepartureAirport,
				ArrivalAirport:   in.ArrivalAirport,
				StartTime:        in.StartTime,
				EndTime:          in.EndTime,
				Limit:            in.Limit,
			})
			if err != nil {
				return nil, err
			}
			return &SearchFlightsOutput{Flights: flights, Total: len(flights)}, nil
		},
	)
}

type UpdateTicketInput struct {
	TicketNo    string `json:"ticket_no"`
	NewFlightID int64  `json:"new_flight_id"`
}

func createUpdateTicketTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateTicket,
			Desc: "Move the user's ticket to a different scheduled flight. The new flight must depart at least three hours from now.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticket_no": {
					Type:     "string",
					Desc:     "The ticket number to rebook, from the user's flight information.",
					Required: true,
				},
				"new_flight_id": {
					Type:     "number",
					Desc:     "The flight_id of the new flight, from search_flights results.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *UpdateTicketInput) (string, error) {
			passenger := model.SessionFromContext(ctx).PassengerID
			if passenger == "" {
				return "", fmt.Errorf("no passenger id configured for this session")
			}
			if err := store.UpdateTicket(ctx, passenger, in.TicketNo, in.NewFlightID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Ticket %s successfully updated to flight %d.", in.TicketNo, in.NewFlightID), nil
		},
	)
}

type CancelTicketInput struct {
	TicketNo string `json:"ticket_no"`
}

func createCancelTicketTool(store *travel.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCancelTicket,
			Desc: "Cancel the user's ticket and remove it from the booking database.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticket_no": {
					Type:     "string",
					Desc:     "The ticket number to cancel, from the user's flight information.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *CancelTicketInput) (string, error) {
			passenger := model.SessionFromContext(ctx).PassengerID
			if passenger == "" {
				return "", fmt.Errorf("no passenger id configured for this session")
			}
			if err := store.CancelTicket(ctx, passenger, in.TicketNo); err != nil {
				return "", err
			}
			return fmt.Sprintf("Ticket %s successfully cancelled.", in.TicketNo), nil
		},
	)
}
