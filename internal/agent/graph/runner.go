package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/graph/observers"
	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

// Runner executes the compiled travel graph turn by turn and drives the
// sensitive-action approval protocol. The thread id doubles as the
// checkpoint id: at most one suspended action per thread.
type Runner struct {
	runnable    compose.Runnable[*model.Turn, *schema.Message]
	threads     model.ThreadRepository
	checkpoints CheckPointStore
	autoApprove bool
	defaults    model.SessionDefaults
}

// RunTurn processes one user query on a thread. When the active assistant
// requests a sensitive tool and auto-approve is off, the returned result is
// marked Interrupted and the caller must follow up with Approve or Deny
// before sending the next query.
func (r *Runner) RunTurn(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	if in.ThreadID == "" {
		return nil, fmt.Errorf("thread id is required")
	}
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if in.PassengerID == "" {
		in.PassengerID = r.defaults.PassengerID
	}

	if !r.autoApprove {
		pending, err := r.checkpoints.Exists(ctx, in.ThreadID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, fmt.Errorf("thread %s has a sensitive action awaiting approval; approve or deny it first", in.ThreadID)
		}
	}

	record, err := r.threads.Load(ctx, in.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", in.ThreadID, err)
	}

	return r.invoke(ctx, in.ThreadID, &model.Turn{Input: in, Record: record})
}

// Approve resumes a suspended thread and lets the pending sensitive tool
// calls execute verbatim.
func (r *Runner) Approve(ctx context.Context, threadID string) (*model.TurnResult, error) {
	if err := r.requirePending(ctx, threadID); err != nil {
		return nil, err
	}
	logx.Debug().Str("thread_id", threadID).Msg("Sensitive action approved, resuming")
	return r.invoke(ctx, threadID, &model.Turn{Input: model.TurnInput{ThreadID: threadID}})
}

// Deny resumes a suspended thread with a refusal: the pending calls are
// answered with the denial reason instead of executing, and the owning
// assistant reacts to it on its next turn.
func (r *Runner) Deny(ctx context.Context, threadID, reason string) (*model.TurnResult, error) {
	if reason == "" {
		return nil, fmt.Errorf("denial reason is required")
	}
	if err := r.requirePending(ctx, threadID); err != nil {
		return nil, err
	}
	logx.Debug().Str("thread_id", threadID).Str("reason", reason).Msg("Sensitive action denied, resuming")
	return r.invoke(ctx, threadID, &model.Turn{Input: model.TurnInput{ThreadID: threadID}},
		compose.WithStateModifier(func(_ context.Context, _ compose.NodePath, state any) error {
			ts, ok := state.(*model.TravelState)
			if !ok {
				return fmt.Errorf("unexpected state type %T", state)
			}
			ts.DenialReason = reason
			return nil
		}),
	)
}

func (r *Runner) requirePending(ctx context.Context, threadID string) error {
	if r.autoApprove {
		return fmt.Errorf("approval protocol is disabled (auto-approve)")
	}
	if threadID == "" {
		return fmt.Errorf("thread id is required")
	}
	pending, err := r.checkpoints.Exists(ctx, threadID)
	if err != nil {
		return err
	}
	if !pending {
		return fmt.Errorf("thread %s has no sensitive action awaiting approval", threadID)
	}
	return nil
}

func (r *Runner) invoke(ctx context.Context, threadID string, turn *model.Turn, opts ...compose.Option) (*model.TurnResult, error) {
	opts = append(opts,
		compose.WithCheckPointID(threadID),
		compose.WithCallbacks(observers.NewAllCallbacks()),
	)

	out, err := r.runnable.Invoke(ctx, turn, opts...)
	if err != nil {
		if info, ok := compose.ExtractInterruptInfo(err); ok {
			return r.interruptedResult(threadID, info)
		}
		return nil, err
	}
	return r.completedResult(ctx, threadID, out)
}

// interruptedResult snapshots the pending sensitive calls from the suspended
// state so the caller can show them to a human.
func (r *Runner) interruptedResult(threadID string, info *compose.InterruptInfo) (*model.TurnResult, error) {
	result := &model.TurnResult{ThreadID: threadID, Interrupted: true}

	node := ""
	if len(info.BeforeNodes) > 0 {
		node = info.BeforeNodes[0]
	} else if len(info.RerunNodes) > 0 {
		node = info.RerunNodes[0]
	}

	state, ok := info.State.(*model.TravelState)
	if !ok {
		return nil, fmt.Errorf("unexpected interrupt state type %T", info.State)
	}
	result.DialogStack = state.DialogStack

	last := state.LastMessage()
	if last == nil || len(last.ToolCalls) == 0 {
		return nil, fmt.Errorf("interrupted with no pending tool calls on thread %s", threadID)
	}
	for _, call := range last.ToolCalls {
		result.Pending = append(result.Pending, model.PendingAction{
			Node:      node,
			CallID:    call.ID,
			Tool:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	logx.Debug().Str("thread_id", threadID).Str("node", node).Int("pending", len(result.Pending)).
		Msg("Turn suspended before sensitive tools")
	return result, nil
}

func (r *Runner) completedResult(ctx context.Context, threadID string, out *schema.Message) (*model.TurnResult, error) {
	// the consumed checkpoint must not block the next turn
	if err := r.checkpoints.Delete(ctx, threadID); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("Error deleting consumed checkpoint")
	}

	result := &model.TurnResult{ThreadID: threadID}
	if out != nil {
		result.Reply = out.Content
	}
	if record, err := r.threads.Load(ctx, threadID); err == nil {
		result.DialogStack = record.DialogStack
	} else {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("Error loading dialog stack for result")
	}
	return result, nil
}
