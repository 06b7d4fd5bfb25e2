package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// TurnInput is the public request for one conversation turn.
type TurnInput struct {
	ThreadID    string `json:"thread_id"`
	PassengerID string `json:"passenger_id,omitempty"`
	Query       string `json:"query"`
}

// Turn is the graph input: the caller's request plus the thread record
// restored from the checkpoint store, so the graph state can be rebuilt
// before the first node runs.
type Turn struct {
	Input  TurnInput
	Record *ThreadRecord
}

// PendingAction is a read-only snapshot of one sensitive tool call awaiting
// approval while the graph is suspended.
type PendingAction struct {
	Node      string `json:"node"`
	CallID    string `json:"call_id"`
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
}

// TurnResult reports the outcome of a turn. Either the turn completed and
// Reply holds the assistant's answer, or it paused before a sensitive tool
// node and Pending lists the calls awaiting approval.
type TurnResult struct {
	ThreadID    string          `json:"thread_id"`
	Reply       string          `json:"reply,omitempty"`
	Interrupted bool            `json:"interrupted"`
	Pending     []PendingAction `json:"pending,omitempty"`
	DialogStack []DialogState   `json:"dialog_stack,omitempty"`
}

// ThreadRecord is the persisted cross-turn conversation state keyed by
// thread id.
type ThreadRecord struct {
	ThreadID    string            `json:"thread_id"`
	Messages    []*schema.Message `json:"messages"`
	DialogStack []DialogState     `json:"dialog_stack"`
}

// ThreadRepository persists thread records between turns. Implementations must
// guarantee per-thread read-after-write consistency; distinct threads are
// fully independent.
type ThreadRepository interface {
	// Load returns the record for a thread, or an empty record for a new one.
	Load(ctx context.Context, threadID string) (*ThreadRecord, error)

	// AppendMessages appends transcript entries for a thread.
	AppendMessages(ctx context.Context, threadID string, msgs ...*schema.Message) error

	// SaveDialog replaces the persisted dialog stack for a thread.
	SaveDialog(ctx context.Context, threadID string, stack []DialogState) error

	// Clear removes all persisted state for a thread.
	Clear(ctx context.Context, threadID string) error
}

// Session carries the per-turn transport concerns (who is calling, which
// thread) out of band from the conversation content.
type Session struct {
	ThreadID    string
	PassengerID string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the per-turn session; the zero value when absent.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
