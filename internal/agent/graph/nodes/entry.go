package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/graph/parsers"
	"github.com/tripdesk/server/internal/agent/graph/prompts"
	"github.com/tripdesk/server/internal/agent/graph/tools"
	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

const leaveSkillAnnouncement = "Resuming dialog with the host assistant. Please reflect on the past conversation and assist the user as needed."

func enterSkillAnnouncement(d model.DialogState) string {
	name := prompts.DisplayName(d)
	return fmt.Sprintf(
		"The assistant is now the %s. Reflect on the above conversation between the host assistant and the user."+
			" The user's intent is unsatisfied. Use the provided tools to assist the user. Remember, you are %s,"+
			" and the booking, update, or other action is not complete until after you have successfully invoked the appropriate tool."+
			" If the user changes their mind or needs help for other tasks, call the CompleteOrEscalate function to let the primary host assistant take control."+
			" Do not mention who you are - just act as the proxy for the assistant.",
		name, name,
	)
}

// EnterSkillMessages acknowledges every handoff request on the assistant
// message with the entry announcement for its destination, and returns the
// destination actually entered: the first handoff by call order wins when the
// model requests several at once.
func EnterSkillMessages(msg *schema.Message) ([]*schema.Message, model.DialogState, error) {
	if msg == nil || len(msg.ToolCalls) == 0 {
		return nil, "", fmt.Errorf("enter_skill: no tool calls on message")
	}

	var out []*schema.Message
	var chosen model.DialogState
	for _, call := range msg.ToolCalls {
		dest, ok := tools.HandoffDestination(call.Function.Name)
		if !ok {
			continue
		}
		out = append(out, schema.ToolMessage(enterSkillAnnouncement(dest), call.ID, schema.WithToolName(call.Function.Name)))
		if chosen == "" {
			chosen = dest
		}
	}
	if chosen == "" {
		return nil, "", fmt.Errorf("enter_skill: no handoff call on message")
	}
	return out, chosen, nil
}

// LeaveSkillMessages acknowledges every pending tool call on the escalating
// message with the exit announcement. A message without tool calls yields no
// messages.
func LeaveSkillMessages(msg *schema.Message) []*schema.Message {
	if msg == nil {
		return nil
	}
	out := make([]*schema.Message, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		out = append(out, schema.ToolMessage(leaveSkillAnnouncement, call.ID, schema.WithToolName(call.Function.Name)))
	}
	return out
}

// NewEnterSkillNode builds the handoff transition: it answers the primary
// assistant's handoff calls, pushes the chosen assistant onto the dialog
// stack and persists both.
func NewEnterSkillNode(repo model.ThreadRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) ([]*schema.Message, error) {
		acks, dest, err := EnterSkillMessages(msg)
		if err != nil {
			return nil, err
		}
		request := firstHandoffRequest(msg)

		if err := compose.ProcessState(ctx, func(ctx context.Context, state *model.TravelState) error {
			state.Messages = model.AppendMessages(state.Messages, acks...)
			state.DialogStack = model.ApplyDialogOp(state.DialogStack, model.PushDialog(dest))
			persistTransition(ctx, repo, state, acks)
			logx.Debug().
				Str("thread_id", state.ThreadID).
				Str("destination", dest.String()).
				Str("request", request).
				Int("acknowledged", len(acks)).
				Msg("Entering specialized assistant")
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return acks, nil
	})
}

// NewLeaveSkillNode builds the escalation transition: it answers the
// specialized assistant's pending calls, pops the dialog stack and hands the
// conversation back to the primary assistant.
func NewLeaveSkillNode(repo model.ThreadRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) ([]*schema.Message, error) {
		acks := LeaveSkillMessages(msg)
		escalation := escalateArgsOf(msg)

		if err := compose.ProcessState(ctx, func(ctx context.Context, state *model.TravelState) error {
			state.Messages = model.AppendMessages(state.Messages, acks...)
			state.DialogStack = model.ApplyDialogOp(state.DialogStack, model.PopDialog())
			persistTransition(ctx, repo, state, acks)
			logx.Debug().
				Str("thread_id", state.ThreadID).
				Str("active_assistant", state.ActiveAssistant().String()).
				Str("reason", escalation.Reason).
				Bool("cancelled", escalation.Cancel).
				Msg("Returning to host assistant")
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return acks, nil
	})
}

// firstHandoffRequest pulls the free-form request text from the first handoff
// call, for logging.
func firstHandoffRequest(msg *schema.Message) string {
	for _, call := range msg.ToolCalls {
		if tools.IsHandoff(call.Function.Name) {
			return parsers.ParseHandoffArgs(call.Function.Arguments).Request
		}
	}
	return ""
}

// escalateArgsOf pulls the escalation reason from the first CompleteOrEscalate
// call, for logging.
func escalateArgsOf(msg *schema.Message) parsers.EscalateArgs {
	if msg == nil {
		return parsers.EscalateArgs{}
	}
	for _, call := range msg.ToolCalls {
		if call.Function.Name == tools.ToolCompleteOrEscalate {
			return parsers.ParseEscalateArgs(call.Function.Arguments)
		}
	}
	return parsers.EscalateArgs{}
}

// persistTransition writes the transition messages and the new dialog stack.
// Persistence failures are logged, not fatal: the in-memory state stays
// authoritative for the rest of the turn.
func persistTransition(ctx context.Context, repo model.ThreadRepository, state *model.TravelState, acks []*schema.Message) {
	if repo == nil {
		return
	}
	if len(acks) > 0 {
		if err := repo.AppendMessages(ctx, state.ThreadID, acks...); err != nil {
			logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("Error persisting transition messages")
		}
	}
	if err := repo.SaveDialog(ctx, state.ThreadID, state.DialogStack); err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("Error persisting dialog stack")
	}
}
