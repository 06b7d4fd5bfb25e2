package tools

import (
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/model"
)

// ===================================
// Routing pseudo-tools
// ===================================
//
// These tools are never executed. The model calls them to signal a routing
// decision: hand the dialog to a specialized assistant, or give it back to
// the primary one. The routers consume the calls and the entry/exit nodes
// answer them with synthetic tool results.

const (
	ToolCompleteOrEscalate        = "CompleteOrEscalate"
	ToolToFlightBookingAssistant  = "ToFlightBookingAssistant"
	ToolToBookCarRental           = "ToBookCarRental"
	ToolToHotelBookingAssistant   = "ToHotelBookingAssistant"
	ToolToBookExcursion           = "ToBookExcursion"
)

// handoffDestinations maps a handoff request tool to the dialog state it
// enters, in the primary assistant's declared tool order.
var handoffDestinations = map[string]model.DialogState{
	ToolToFlightBookingAssistant: model.DialogUpdateFlight,
	ToolToBookCarRental:          model.DialogBookCarRental,
	ToolToHotelBookingAssistant:  model.DialogBookHotel,
	ToolToBookExcursion:          model.DialogBookExcursion,
}

// HandoffDestination resolves a handoff tool name to its dialog state.
func HandoffDestination(toolName string) (model.DialogState, bool) {
	d, ok := handoffDestinations[toolName]
	return d, ok
}

// IsHandoff reports whether the tool name is a specialized-assistant handoff
// request.
func IsHandoff(toolName string) bool {
	_, ok := handoffDestinations[toolName]
	return ok
}

// CompleteOrEscalateInfo describes the escalation pseudo-tool bound to every
// specialized assistant.
func CompleteOrEscalateInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolCompleteOrEscalate,
		Desc: "A tool to mark the current task as completed and/or to escalate control of the dialog to the main assistant, who can re-route the dialog based on the user's needs.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"cancel": {
				Type: "boolean",
				Desc: "Whether the current task is being abandoned.",
			},
			"reason": {
				Type:     "string",
				Desc:     "Why control is being returned, e.g. 'User changed their mind about the current task.' or 'I have fully completed the task.'",
				Required: true,
			},
		}),
	}
}

// HandoffInfos describes the four handoff request pseudo-tools bound to the
// primary assistant.
func HandoffInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolToFlightBookingAssistant,
			Desc: "Transfers work to a specialized assistant to handle flight updates and cancellations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"request": {
					Type:     "string",
					Desc:     "Any necessary followup questions the update flight assistant should clarify before proceeding.",
					Required: true,
				},
			}),
		},
		{
			Name: ToolToBookCarRental,
			Desc: "Transfers work to a specialized assistant to handle car rental bookings.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     "string",
					Desc:     "The location where the user wants to rent a car.",
					Required: true,
				},
				"start_date": {Type: "string", Desc: "The start date of the car rental."},
				"end_date":   {Type: "string", Desc: "The end date of the car rental."},
				"request": {
					Type: "string",
					Desc: "Any additional information or requests from the user regarding the car rental.",
				},
			}),
		},
		{
			Name: ToolToHotelBookingAssistant,
			Desc: "Transfer work to a specialized assistant to handle hotel bookings.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     "string",
					Desc:     "The location where the user wants to book a hotel.",
					Required: true,
				},
				"checkin_date":  {Type: "string", Desc: "The check-in date for the hotel."},
				"checkout_date": {Type: "string", Desc: "The check-out date for the hotel."},
				"request": {
					Type: "string",
					Desc: "Any additional information or requests from the user regarding the hotel booking.",
				},
			}),
		},
		{
			Name: ToolToBookExcursion,
			Desc: "Transfers work to a specialized assistant to handle trip recommendation and other excursion bookings.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     "string",
					Desc:     "The location where the user wants to book a recommended trip.",
					Required: true,
				},
				"request": {
					Type: "string",
					Desc: "Any additional information or requests from the user regarding the trip recommendation.",
				},
			}),
		},
	}
}
