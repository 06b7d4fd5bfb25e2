// Package nodes implements the processing nodes of the travel support graph:
// the user-info fetch, the five assistants, the entry/exit transitions, the
// tool execution nodes and the routing conditions between them.
package nodes

import (
	"github.com/tripdesk/server/internal/agent/model"
)

// Node names. The assistant node names match their dialog states so the
// dialog stack can be routed on directly.
const (
	NodeFetchUserInfo = "fetch_user_info"

	NodePrimaryAssistant = "primary_assistant"
	NodePrimaryTools     = "primary_assistant_tools"

	NodeEnterSkill = "enter_skill"
	NodeLeaveSkill = "leave_skill"

	NodeUpdateFlight               = "update_flight"
	NodeUpdateFlightSafeTools      = "update_flight_safe_tools"
	NodeUpdateFlightSensitiveTools = "update_flight_sensitive_tools"

	NodeBookCarRental               = "book_car_rental"
	NodeBookCarRentalSafeTools      = "book_car_rental_safe_tools"
	NodeBookCarRentalSensitiveTools = "book_car_rental_sensitive_tools"

	NodeBookHotel               = "book_hotel"
	NodeBookHotelSafeTools      = "book_hotel_safe_tools"
	NodeBookHotelSensitiveTools = "book_hotel_sensitive_tools"

	NodeBookExcursion               = "book_excursion"
	NodeBookExcursionSafeTools      = "book_excursion_safe_tools"
	NodeBookExcursionSensitiveTools = "book_excursion_sensitive_tools"
)

// SensitiveToolNodes lists the pause points for the human-approval protocol.
var SensitiveToolNodes = []string{
	NodeUpdateFlightSensitiveTools,
	NodeBookCarRentalSensitiveTools,
	NodeBookHotelSensitiveTools,
	NodeBookExcursionSensitiveTools,
}

// AssistantNodeFor maps a dialog state to the node that serves it.
func AssistantNodeFor(d model.DialogState) string {
	if d == model.DialogPrimary {
		return NodePrimaryAssistant
	}
	return string(d)
}
