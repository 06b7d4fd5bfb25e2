package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/graph/tools"
	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

// ExecuteToolCalls runs the calls of one assistant message sequentially and
// pairs every call with a tool result, no matter what: an unknown tool or a
// failing execution produces an error-shaped result the model can recover
// from instead of aborting the turn.
func ExecuteToolCalls(ctx context.Context, lookup map[string]tool.InvokableTool, calls []schema.ToolCall) []*schema.Message {
	out := make([]*schema.Message, 0, len(calls))
	for _, call := range calls {
		name := call.Function.Name
		t, ok := lookup[name]
		if !ok {
			logx.Warn().Str("tool_name", name).Str("arguments", call.Function.Arguments).
				Msg("Unknown or invalid tool call; returning fallback result")
			out = append(out, schema.ToolMessage(
				fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name),
				call.ID, schema.WithToolName(name)))
			continue
		}

		result, err := t.InvokableRun(ctx, call.Function.Arguments)
		if err != nil {
			logx.Error().Err(err).Str("tool_name", name).Msg("Tool execution failed")
			result = fmt.Sprintf("Error: %s\n please fix your mistakes.", err)
		}
		out = append(out, schema.ToolMessage(result, call.ID, schema.WithToolName(name)))
	}
	return out
}

// DenialMessages substitutes a human denial for every pending call's real
// output, so the owning assistant sees the refusal on its next turn.
func DenialMessages(calls []schema.ToolCall, reason string) []*schema.Message {
	out := make([]*schema.Message, 0, len(calls))
	for _, call := range calls {
		out = append(out, schema.ToolMessage(
			fmt.Sprintf("API call denied by user. Reasoning: '%s'. Continue assisting, accounting for the user's input.", reason),
			call.ID, schema.WithToolName(call.Function.Name)))
	}
	return out
}

// NewToolRunnerNode builds a tool execution node over a fixed tool set. The
// same constructor serves safe and sensitive nodes; the sensitive ones
// additionally honor a denial recorded in state by a resume call, replacing
// execution entirely for that batch.
func NewToolRunnerNode(ctx context.Context, name string, ts []tool.InvokableTool, repo model.ThreadRepository) (*compose.Lambda, error) {
	lookup, err := tools.NewLookup(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) ([]*schema.Message, error) {
		if msg == nil || len(msg.ToolCalls) == 0 {
			return nil, fmt.Errorf("%s: no tool calls on message", name)
		}

		var session model.Session
		var denial string
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.TravelState) error {
			session = model.Session{ThreadID: state.ThreadID, PassengerID: state.PassengerID}
			denial = state.DenialReason
			state.DenialReason = ""
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		var results []*schema.Message
		if denial != "" {
			logx.Debug().Str("node", name).Str("reason", denial).Msg("Sensitive action denied by user")
			results = DenialMessages(msg.ToolCalls, denial)
		} else {
			results = ExecuteToolCalls(model.WithSession(ctx, session), lookup, msg.ToolCalls)
		}

		if err := compose.ProcessState(ctx, func(ctx context.Context, state *model.TravelState) error {
			state.Messages = model.AppendMessages(state.Messages, results...)
			if repo != nil {
				if err := repo.AppendMessages(ctx, state.ThreadID, results...); err != nil {
					logx.Error().Err(err).Str("thread_id", state.ThreadID).Str("node", name).
						Msg("Error persisting tool results")
				}
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("node", name).Int("tool_count", len(results)).Msg("Tool calls executed")
		return results, nil
	}), nil
}
