package model

import (
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// TravelState is the graph-local state threaded through every node of the
// travel support graph.
//
// Concurrency model:
//   - Registered as Eino graph local state via compose.WithGenLocalState.
//   - All reads/writes happen only inside state handlers
//     (WithStatePreHandler, WithStatePostHandler) or compose.ProcessState,
//     which Eino serializes per run. No extra locking is needed as long as
//     nothing touches the state outside handlers.
//   - The state is checkpointed before interrupted sensitive-tool nodes, so
//     every field must survive the Eino serializer (exported, registered).
type TravelState struct {
	ThreadID    string
	PassengerID string

	// Messages is the conversation transcript. Append-only: new messages are
	// merged via AppendMessages, never assigned wholesale.
	Messages []*schema.Message

	// UserInfo holds the passenger's resolved ticket/flight details, set once
	// per turn by the fetch_user_info node. Empty when no passenger id was
	// available.
	UserInfo string

	// DialogStack records which assistant owns the dialog; mutated only via
	// ApplyDialogOp. Empty stack means the primary assistant.
	DialogStack []DialogState

	// DenialReason carries a human denial injected on resume; the sensitive
	// tool node substitutes it for the real tool output and clears it.
	DenialReason string
}

// ActiveAssistant reports the assistant that currently owns the dialog.
func (s *TravelState) ActiveAssistant() DialogState {
	return TopDialog(s.DialogStack)
}

// AppendMessages is the transcript reducer: new messages are concatenated,
// except that a tool-result re-emitted for an already answered call id
// replaces the earlier result in place. This is what lets a denial message
// stand in for a sensitive tool's real output on resume.
func AppendMessages(history []*schema.Message, incoming ...*schema.Message) []*schema.Message {
	out := history
	for _, msg := range incoming {
		if msg == nil {
			continue
		}
		if msg.Role == schema.Tool && msg.ToolCallID != "" {
			if idx := indexOfToolResult(out, msg.ToolCallID); idx >= 0 {
				out = append([]*schema.Message{}, out...)
				out[idx] = msg
				continue
			}
		}
		out = append(out, msg)
	}
	return out
}

func indexOfToolResult(msgs []*schema.Message, callID string) int {
	for i, m := range msgs {
		if m != nil && m.Role == schema.Tool && m.ToolCallID == callID {
			return i
		}
	}
	return -1
}

// LastMessage returns the newest transcript entry, or nil for an empty thread.
func (s *TravelState) LastMessage() *schema.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

func init() {
	for name, register := range map[string]func(string) error{
		"tripdesk.travel_state":  compose.RegisterSerializableType[TravelState],
		"tripdesk.dialog_state":  compose.RegisterSerializableType[DialogState],
		"tripdesk.turn":          compose.RegisterSerializableType[Turn],
		"tripdesk.turn_input":    compose.RegisterSerializableType[TurnInput],
		"tripdesk.thread_record": compose.RegisterSerializableType[ThreadRecord],
	} {
		if err := register(name); err != nil {
			panic(err)
		}
	}
}
