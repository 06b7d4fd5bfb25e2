package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/server/internal/agent/model"
)

func TestRenderSystem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	t.Run("primary prompt carries user info and time", func(t *testing.T) {
		got, err := RenderSystem(ctx, model.DialogPrimary, "Ticket 7240005432906569 on LX0112", now)
		require.NoError(t, err)
		assert.Contains(t, got, "Ticket 7240005432906569 on LX0112")
		assert.Contains(t, got, "2026-08-29")
		assert.Contains(t, got, "Swiss Airlines")
	})

	t.Run("specialized prompts mention escalation", func(t *testing.T) {
		for _, d := range model.SpecializedDialogStates {
			got, err := RenderSystem(ctx, d, "", now)
			require.NoError(t, err, d)
			assert.Contains(t, got, "CompleteOrEscalate", d)
			assert.Contains(t, got, "2026-08-29", d)
		}
	})

	t.Run("unknown assistant is an error", func(t *testing.T) {
		_, err := RenderSystem(ctx, model.DialogState("bogus"), "", now)
		assert.Error(t, err)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Flight Updates & Booking Assistant", DisplayName(model.DialogUpdateFlight))
	assert.Equal(t, "Car Rental Assistant", DisplayName(model.DialogBookCarRental))
	assert.Equal(t, "Hotel Booking Assistant", DisplayName(model.DialogBookHotel))
	assert.Equal(t, "Trip Recommendation Assistant", DisplayName(model.DialogBookExcursion))
	assert.Equal(t, "other", DisplayName(model.DialogState("other")))
}
