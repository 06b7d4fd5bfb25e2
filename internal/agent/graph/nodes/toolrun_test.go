package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/server/internal/agent/model"
)

type fakeTool struct {
	name   string
	result string
	err    error
	gotCtx context.Context
}

func (f *fakeTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: f.name}, nil
}

func (f *fakeTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	f.gotCtx = ctx
	return f.result, f.err
}

func TestExecuteToolCalls(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs every call with a result in order", func(t *testing.T) {
		lookup := map[string]tool.InvokableTool{
			"search_flights": &fakeTool{name: "search_flights", result: "2 flights found"},
			"cancel_ticket":  &fakeTool{name: "cancel_ticket", result: "Ticket successfully cancelled."},
		}
		msg := assistantMsg("search_flights", "cancel_ticket")

		results := ExecuteToolCalls(ctx, lookup, msg.ToolCalls)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ToolCallID)
		assert.Equal(t, "2 flights found", results[0].Content)
		assert.Equal(t, "b", results[1].ToolCallID)
		assert.Equal(t, "Ticket successfully cancelled.", results[1].Content)
	})

	t.Run("unknown tool gets a fallback result", func(t *testing.T) {
		results := ExecuteToolCalls(ctx, map[string]tool.InvokableTool{}, assistantMsg("made_up_tool").ToolCalls)
		require.Len(t, results, 1)
		assert.Equal(t, schema.Tool, results[0].Role)
		assert.Contains(t, results[0].Content, "unknown_tool")
	})

	t.Run("tool error becomes a recoverable result", func(t *testing.T) {
		lookup := map[string]tool.InvokableTool{
			"cancel_ticket": &fakeTool{name: "cancel_ticket", err: errors.New("no ticket found for passenger")},
		}
		results := ExecuteToolCalls(ctx, lookup, assistantMsg("cancel_ticket").ToolCalls)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Content, "no ticket found for passenger")
		assert.Contains(t, results[0].Content, "please fix your mistakes")
	})

	t.Run("session context reaches the tool", func(t *testing.T) {
		ft := &fakeTool{name: "cancel_ticket", result: "ok"}
		lookup := map[string]tool.InvokableTool{"cancel_ticket": ft}
		sessionCtx := model.WithSession(ctx, model.Session{ThreadID: "t1", PassengerID: "3442 587242"})

		ExecuteToolCalls(sessionCtx, lookup, assistantMsg("cancel_ticket").ToolCalls)
		require.NotNil(t, ft.gotCtx)
		assert.Equal(t, "3442 587242", model.SessionFromContext(ft.gotCtx).PassengerID)
	})
}

func TestDenialMessages(t *testing.T) {
	msg := assistantMsg("cancel_ticket", "update_ticket_to_new_flight")
	results := DenialMessages(msg.ToolCalls, "I changed my mind")
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, schema.Tool, r.Role)
		assert.Equal(t, msg.ToolCalls[i].ID, r.ToolCallID)
		assert.Contains(t, r.Content, "API call denied by user")
		assert.Contains(t, r.Content, "I changed my mind")
	}
}

func TestDegenerate(t *testing.T) {
	assert.True(t, degenerate(nil))
	assert.True(t, degenerate(schema.AssistantMessage("", nil)))
	assert.True(t, degenerate(schema.AssistantMessage("   ", nil)))
	assert.False(t, degenerate(schema.AssistantMessage("hi", nil)))
	assert.False(t, degenerate(assistantMsg("search_flights")))
}
