package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/graph/tools"
	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

// RoutePrimaryAssistant decides where the primary assistant's output goes:
// plain text ends the turn, a handoff request enters a specialized assistant,
// anything else runs the primary tool set.
func RoutePrimaryAssistant(msg *schema.Message) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("primary router: nil message")
	}
	if len(msg.ToolCalls) == 0 {
		return compose.END, nil
	}
	for _, call := range msg.ToolCalls {
		if tools.IsHandoff(call.Function.Name) {
			return NodeEnterSkill, nil
		}
	}
	return NodePrimaryTools, nil
}

// RouteSpecializedAssistant decides where a specialized assistant's output
// goes. An escalation request wins over everything else; otherwise the call
// set picks the safe or sensitive execution node, sensitive whenever at least
// one call is not in the safe set.
func RouteSpecializedAssistant(msg *schema.Message, safeNames map[string]bool, safeNode, sensitiveNode string) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("assistant router: nil message")
	}
	if len(msg.ToolCalls) == 0 {
		return compose.END, nil
	}
	allSafe := true
	for _, call := range msg.ToolCalls {
		if call.Function.Name == tools.ToolCompleteOrEscalate {
			return NodeLeaveSkill, nil
		}
		if !safeNames[call.Function.Name] {
			allSafe = false
		}
	}
	if allSafe {
		return safeNode, nil
	}
	return sensitiveNode, nil
}

// NewActiveAssistantCondition routes to whichever assistant currently owns
// the dialog, per the stack top. Used both at turn start and after a handoff
// transition.
func NewActiveAssistantCondition() func(context.Context, []*schema.Message) (string, error) {
	return func(ctx context.Context, _ []*schema.Message) (string, error) {
		var active model.DialogState
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.TravelState) error {
			active = state.ActiveAssistant()
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}
		node := AssistantNodeFor(active)
		logx.Debug().Str("assistant", active.String()).Msg("Routing to active assistant")
		return node, nil
	}
}

// AssistantNodeSet lists the endpoints of an active-assistant branch.
func AssistantNodeSet() map[string]bool {
	return map[string]bool{
		NodePrimaryAssistant: true,
		NodeUpdateFlight:     true,
		NodeBookCarRental:    true,
		NodeBookHotel:        true,
		NodeBookExcursion:    true,
	}
}

// NewPrimaryAssistantCondition wraps RoutePrimaryAssistant as a branch
// condition.
func NewPrimaryAssistantCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, msg *schema.Message) (string, error) {
		return RoutePrimaryAssistant(msg)
	}
}

// NewSpecializedAssistantCondition wraps RouteSpecializedAssistant over a
// partition's safe tool names.
func NewSpecializedAssistantCondition(ctx context.Context, partition tools.Partition, safeNode, sensitiveNode string) (func(context.Context, *schema.Message) (string, error), error) {
	safeNames, err := partition.SafeNames(ctx)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, msg *schema.Message) (string, error) {
		return RouteSpecializedAssistant(msg, safeNames, safeNode, sensitiveNode)
	}, nil
}
