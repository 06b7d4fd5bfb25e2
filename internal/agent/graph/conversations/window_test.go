package conversations

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowApply(t *testing.T) {
	user := func(s string) *schema.Message { return schema.UserMessage(s) }

	t.Run("zero window is unbounded", func(t *testing.T) {
		msgs := []*schema.Message{user("a"), user("b"), user("c")}
		got := Window{}.Apply(msgs)
		assert.Equal(t, msgs, got)
	})

	t.Run("short transcript passes through", func(t *testing.T) {
		msgs := []*schema.Message{user("a"), user("b")}
		got := NewWindow(10).Apply(msgs)
		assert.Equal(t, msgs, got)
	})

	t.Run("long transcript keeps the tail", func(t *testing.T) {
		msgs := []*schema.Message{user("a"), user("b"), user("c"), user("d")}
		got := NewWindow(2).Apply(msgs)
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].Content)
		assert.Equal(t, "d", got[1].Content)
	})

	t.Run("cut never starts on a tool result", func(t *testing.T) {
		call := schema.AssistantMessage("", nil)
		call.ToolCalls = []schema.ToolCall{{ID: "call_1", Function: schema.FunctionCall{Name: "search_flights"}}}
		msgs := []*schema.Message{
			user("a"),
			call,
			schema.ToolMessage("result", "call_1", schema.WithToolName("search_flights")),
			user("b"),
		}
		got := NewWindow(3).Apply(msgs)
		require.Len(t, got, 3)
		assert.Equal(t, schema.Assistant, got[0].Role)
	})

	t.Run("result is a copy", func(t *testing.T) {
		msgs := []*schema.Message{user("a"), user("b")}
		got := NewWindow(10).Apply(msgs)
		got[0] = user("mutated")
		assert.Equal(t, "a", msgs[0].Content)
	})
}
