package nodes

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/server/internal/agent/model"
)

func TestEnterSkillMessages(t *testing.T) {
	t.Run("single handoff", func(t *testing.T) {
		msgs, dest, err := EnterSkillMessages(assistantMsg("ToFlightBookingAssistant"))
		require.NoError(t, err)
		assert.Equal(t, model.DialogUpdateFlight, dest)
		require.Len(t, msgs, 1)
		assert.Equal(t, schema.Tool, msgs[0].Role)
		assert.Equal(t, "a", msgs[0].ToolCallID)
		assert.Contains(t, msgs[0].Content, "Flight Updates & Booking Assistant")
		assert.Contains(t, msgs[0].Content, "CompleteOrEscalate")
	})

	t.Run("multiple handoffs acknowledge all, first wins", func(t *testing.T) {
		msgs, dest, err := EnterSkillMessages(assistantMsg("ToBookCarRental", "ToHotelBookingAssistant"))
		require.NoError(t, err)
		assert.Equal(t, model.DialogBookCarRental, dest)
		require.Len(t, msgs, 2)
		assert.Contains(t, msgs[0].Content, "Car Rental Assistant")
		assert.Contains(t, msgs[1].Content, "Hotel Booking Assistant")
	})

	t.Run("non-handoff calls are skipped", func(t *testing.T) {
		msgs, dest, err := EnterSkillMessages(assistantMsg("search_flights", "ToBookExcursion"))
		require.NoError(t, err)
		assert.Equal(t, model.DialogBookExcursion, dest)
		assert.Len(t, msgs, 1)
	})

	t.Run("no handoff call is an error", func(t *testing.T) {
		_, _, err := EnterSkillMessages(assistantMsg("search_flights"))
		assert.Error(t, err)
	})

	t.Run("no tool calls is an error", func(t *testing.T) {
		_, _, err := EnterSkillMessages(schema.AssistantMessage("hello", nil))
		assert.Error(t, err)
	})
}

func TestLeaveSkillMessages(t *testing.T) {
	t.Run("every pending call is acknowledged", func(t *testing.T) {
		msgs := LeaveSkillMessages(assistantMsg("CompleteOrEscalate", "cancel_ticket"))
		require.Len(t, msgs, 2)
		for _, m := range msgs {
			assert.Equal(t, schema.Tool, m.Role)
			assert.Contains(t, m.Content, "Resuming dialog with the host assistant")
		}
		assert.Equal(t, "a", msgs[0].ToolCallID)
		assert.Equal(t, "b", msgs[1].ToolCallID)
	})

	t.Run("no calls yields no messages", func(t *testing.T) {
		assert.Empty(t, LeaveSkillMessages(schema.AssistantMessage("bye", nil)))
		assert.Empty(t, LeaveSkillMessages(nil))
	})
}
