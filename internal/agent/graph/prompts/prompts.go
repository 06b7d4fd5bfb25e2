// Package prompts renders the system prompts for the five travel support
// assistants from embedded templates.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/model"
)

//go:embed template/primary_assistant.txt
var primarySystemPrompt string

//go:embed template/update_flight.txt
var updateFlightSystemPrompt string

//go:embed template/book_car_rental.txt
var bookCarRentalSystemPrompt string

//go:embed template/book_hotel.txt
var bookHotelSystemPrompt string

//go:embed template/book_excursion.txt
var bookExcursionSystemPrompt string

var systemTemplates = map[model.DialogState]string{
	model.DialogPrimary:       primarySystemPrompt,
	model.DialogUpdateFlight:  updateFlightSystemPrompt,
	model.DialogBookCarRental: bookCarRentalSystemPrompt,
	model.DialogBookHotel:     bookHotelSystemPrompt,
	model.DialogBookExcursion: bookExcursionSystemPrompt,
}

var displayNames = map[model.DialogState]string{
	model.DialogPrimary:       "Host Assistant",
	model.DialogUpdateFlight:  "Flight Updates & Booking Assistant",
	model.DialogBookCarRental: "Car Rental Assistant",
	model.DialogBookHotel:     "Hotel Booking Assistant",
	model.DialogBookExcursion: "Trip Recommendation Assistant",
}

// DisplayName returns the user-facing name of an assistant, used in handoff
// announcements.
func DisplayName(d model.DialogState) string {
	if name, ok := displayNames[d]; ok {
		return name
	}
	return string(d)
}

// RenderSystem renders the system prompt for an assistant via the Eino prompt
// component, which also triggers prompt callbacks.
func RenderSystem(ctx context.Context, assistant model.DialogState, userInfo string, now time.Time) (string, error) {
	tplText, ok := systemTemplates[assistant]
	if !ok {
		return "", fmt.Errorf("no system prompt for assistant %q", assistant)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tplText),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"UserInfo": userInfo,
		"Time":     now.Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("render %s system prompt: %w", assistant, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render %s system prompt: empty result", assistant)
	}
	return msgs[0].Content, nil
}
