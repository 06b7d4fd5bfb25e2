package nodes

import (
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/server/internal/agent/model"
)

func assistantMsg(toolNames ...string) *schema.Message {
	msg := schema.AssistantMessage("", nil)
	for i, name := range toolNames {
		msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
			ID:       string(rune('a' + i)),
			Function: schema.FunctionCall{Name: name},
		})
	}
	return msg
}

func TestRoutePrimaryAssistant(t *testing.T) {
	t.Run("plain answer ends the turn", func(t *testing.T) {
		got, err := RoutePrimaryAssistant(schema.AssistantMessage("Your flight departs at 8am.", nil))
		require.NoError(t, err)
		assert.Equal(t, compose.END, got)
	})

	t.Run("handoff request enters a skill", func(t *testing.T) {
		got, err := RoutePrimaryAssistant(assistantMsg("ToFlightBookingAssistant"))
		require.NoError(t, err)
		assert.Equal(t, NodeEnterSkill, got)
	})

	t.Run("handoff wins even when mixed with plain tools", func(t *testing.T) {
		got, err := RoutePrimaryAssistant(assistantMsg("search_flights", "ToBookCarRental"))
		require.NoError(t, err)
		assert.Equal(t, NodeEnterSkill, got)
	})

	t.Run("plain tool calls run the primary tools", func(t *testing.T) {
		got, err := RoutePrimaryAssistant(assistantMsg("search_flights", "lookup_policy"))
		require.NoError(t, err)
		assert.Equal(t, NodePrimaryTools, got)
	})

	t.Run("nil message is an error", func(t *testing.T) {
		_, err := RoutePrimaryAssistant(nil)
		assert.Error(t, err)
	})
}

func TestRouteSpecializedAssistant(t *testing.T) {
	safe := map[string]bool{"search_flights": true}

	t.Run("plain answer ends the turn", func(t *testing.T) {
		got, err := RouteSpecializedAssistant(schema.AssistantMessage("Done.", nil), safe, NodeUpdateFlightSafeTools, NodeUpdateFlightSensitiveTools)
		require.NoError(t, err)
		assert.Equal(t, compose.END, got)
	})

	t.Run("escalation wins over everything", func(t *testing.T) {
		got, err := RouteSpecializedAssistant(assistantMsg("search_flights", "CompleteOrEscalate"), safe, NodeUpdateFlightSafeTools, NodeUpdateFlightSensitiveTools)
		require.NoError(t, err)
		assert.Equal(t, NodeLeaveSkill, got)
	})

	t.Run("all safe calls pick the safe node", func(t *testing.T) {
		got, err := RouteSpecializedAssistant(assistantMsg("search_flights"), safe, NodeUpdateFlightSafeTools, NodeUpdateFlightSensitiveTools)
		require.NoError(t, err)
		assert.Equal(t, NodeUpdateFlightSafeTools, got)
	})

	t.Run("one sensitive call picks the sensitive node", func(t *testing.T) {
		got, err := RouteSpecializedAssistant(assistantMsg("search_flights", "cancel_ticket"), safe, NodeUpdateFlightSafeTools, NodeUpdateFlightSensitiveTools)
		require.NoError(t, err)
		assert.Equal(t, NodeUpdateFlightSensitiveTools, got)
	})
}

func TestAssistantNodeFor(t *testing.T) {
	assert.Equal(t, NodePrimaryAssistant, AssistantNodeFor(model.DialogPrimary))
	assert.Equal(t, NodeUpdateFlight, AssistantNodeFor(model.DialogUpdateFlight))
	assert.Equal(t, NodeBookExcursion, AssistantNodeFor(model.DialogBookExcursion))
}
