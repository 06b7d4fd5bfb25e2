// Package observers logs model, tool and prompt lifecycle events for every
// graph run.
package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks bundles the chat-model, tool and prompt handlers into the
// single callbacks.Handler the runner attaches per invocation.
func NewAllCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Tool(newToolHandler()).
		Prompt(newPromptHandler()).
		Handler()
}
