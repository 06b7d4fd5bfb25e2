package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDialogOpPush(t *testing.T) {
	stack := []DialogState{}
	stack = ApplyDialogOp(stack, PushDialog(DialogUpdateFlight))
	require.Len(t, stack, 1)
	assert.Equal(t, DialogUpdateFlight, TopDialog(stack))

	stack = ApplyDialogOp(stack, PushDialog(DialogBookHotel))
	require.Len(t, stack, 2)
	assert.Equal(t, DialogBookHotel, TopDialog(stack))
}

func TestApplyDialogOpPop(t *testing.T) {
	stack := []DialogState{DialogUpdateFlight, DialogBookHotel}
	stack = ApplyDialogOp(stack, PopDialog())
	require.Len(t, stack, 1)
	assert.Equal(t, DialogUpdateFlight, TopDialog(stack))

	stack = ApplyDialogOp(stack, PopDialog())
	assert.Empty(t, stack)

	// popping an empty stack stays empty
	stack = ApplyDialogOp(stack, PopDialog())
	assert.Empty(t, stack)
}

func TestApplyDialogOpKeep(t *testing.T) {
	stack := []DialogState{DialogBookCarRental}
	next := ApplyDialogOp(stack, KeepDialog())
	assert.Equal(t, stack, next)
}

func TestApplyDialogOpDoesNotAliasInput(t *testing.T) {
	stack := []DialogState{DialogUpdateFlight}
	pushed := ApplyDialogOp(stack, PushDialog(DialogBookHotel))
	pushed[0] = DialogBookExcursion
	assert.Equal(t, DialogUpdateFlight, stack[0])
}

func TestHandoffRoundTripRestoresDepth(t *testing.T) {
	stack := []DialogState{}
	entered := ApplyDialogOp(stack, PushDialog(DialogBookExcursion))
	left := ApplyDialogOp(entered, PopDialog())
	assert.Len(t, entered, len(stack)+1)
	assert.Len(t, left, len(stack))
}

func TestTopDialogEmptyMeansPrimary(t *testing.T) {
	assert.Equal(t, DialogPrimary, TopDialog(nil))
	s := &TravelState{}
	assert.Equal(t, DialogPrimary, s.ActiveAssistant())
}

func TestAppendMessagesConcatenates(t *testing.T) {
	history := []*schema.Message{schema.UserMessage("hi")}
	out := AppendMessages(history, schema.AssistantMessage("hello", nil))
	require.Len(t, out, 2)
	assert.Equal(t, "hello", out[1].Content)
}

func TestAppendMessagesReplacesToolResultByCallID(t *testing.T) {
	history := []*schema.Message{
		schema.UserMessage("cancel my flight"),
		schema.ToolMessage("ticket cancelled", "call_1"),
	}
	out := AppendMessages(history, schema.ToolMessage("request denied by user", "call_1"))
	require.Len(t, out, 2)
	assert.Equal(t, "request denied by user", out[1].Content)
	// the original slice is not mutated
	assert.Equal(t, "ticket cancelled", history[1].Content)
}

func TestAppendMessagesSkipsNil(t *testing.T) {
	out := AppendMessages(nil, nil, schema.UserMessage("hi"))
	require.Len(t, out, 1)
}
