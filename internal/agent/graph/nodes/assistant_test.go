package nodes

import (
	"context"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replayModel struct {
	outputs []*schema.Message
	inputs  [][]*schema.Message
}

func (m *replayModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.inputs = append(m.inputs, in)
	out := m.outputs[0]
	if len(m.outputs) > 1 {
		m.outputs = m.outputs[1:]
	}
	return out, nil
}

func (m *replayModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	panic("not implemented")
}

func TestAssistantNodeRetriesDegenerateOutput(t *testing.T) {
	ctx := context.Background()

	t.Run("real output passes through", func(t *testing.T) {
		cm := &replayModel{outputs: []*schema.Message{schema.AssistantMessage("hello", nil)}}

		out, err := generateWithRetry(ctx, "primary_assistant", cm, []*schema.Message{schema.UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "hello", out.Content)
		assert.Len(t, cm.inputs, 1)
	})

	t.Run("empty output is re-prompted with a nudge", func(t *testing.T) {
		cm := &replayModel{outputs: []*schema.Message{
			schema.AssistantMessage("", nil),
			schema.AssistantMessage("second try", nil),
		}}

		out, err := generateWithRetry(ctx, "primary_assistant", cm, []*schema.Message{schema.UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "second try", out.Content)

		require.Len(t, cm.inputs, 2)
		retry := cm.inputs[1]
		assert.Equal(t, "Respond with a real output.", retry[len(retry)-1].Content)
	})

	t.Run("persistent empty output fails the node", func(t *testing.T) {
		cm := &replayModel{outputs: []*schema.Message{schema.AssistantMessage("", nil)}}

		_, err := generateWithRetry(ctx, "primary_assistant", cm, []*schema.Message{schema.UserMessage("hi")})
		require.Error(t, err)
		assert.Len(t, cm.inputs, assistantMaxAttempts)
	})
}
