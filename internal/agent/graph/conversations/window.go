// Package conversations bounds the transcript slice handed to the chat
// models on long-running threads.
package conversations

import (
	"github.com/cloudwego/eino/schema"
)

// Window limits how many transcript messages the assistants are prompted
// with. The zero value is unbounded.
type Window struct {
	maxMessages int
}

func NewWindow(maxMessages int) Window {
	return Window{maxMessages: maxMessages}
}

// Apply returns the most recent messages within the window. The cut never
// lands on a tool result: the start is extended backward until the assistant
// message that issued the calls is included, so providers always see results
// paired with their calls.
func (w Window) Apply(msgs []*schema.Message) []*schema.Message {
	if w.maxMessages <= 0 || len(msgs) <= w.maxMessages {
		result := make([]*schema.Message, len(msgs))
		copy(result, msgs)
		return result
	}

	start := len(msgs) - w.maxMessages
	for start > 0 && msgs[start] != nil && msgs[start].Role == schema.Tool {
		start--
	}

	source := msgs[start:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
