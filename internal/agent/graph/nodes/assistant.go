package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/tripdesk/server/internal/agent/graph/conversations"
	"github.com/tripdesk/server/internal/agent/graph/prompts"
	"github.com/tripdesk/server/internal/agent/graph/tools"
	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

// assistantMaxAttempts bounds the re-prompt loop for degenerate model output.
const assistantMaxAttempts = 3

// AssistantModelConfig holds what is needed to build the per-assistant chat
// models.
type AssistantModelConfig struct {
	APIKey  string
	BaseURL string
	Model   *model.AssistantModelConfig
}

// AssistantModels holds one chat model per assistant, each with its own tool
// set bound: the primary assistant sees its safe tools plus the four handoff
// pseudo-tools, each specialized assistant sees its partition plus
// CompleteOrEscalate.
type AssistantModels struct {
	Primary   einomodel.BaseChatModel
	Flight    einomodel.BaseChatModel
	CarRental einomodel.BaseChatModel
	Hotel     einomodel.BaseChatModel
	Excursion einomodel.BaseChatModel
}

// ByDialog returns the chat model serving a dialog state.
func (m *AssistantModels) ByDialog(d model.DialogState) einomodel.BaseChatModel {
	switch d {
	case model.DialogUpdateFlight:
		return m.Flight
	case model.DialogBookCarRental:
		return m.CarRental
	case model.DialogBookHotel:
		return m.Hotel
	case model.DialogBookExcursion:
		return m.Excursion
	default:
		return m.Primary
	}
}

// NewAssistantModels creates the Gemini chat models for all five assistants
// and binds each one's tool set.
func NewAssistantModels(ctx context.Context, config AssistantModelConfig, suite *tools.Suite) (*AssistantModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	newBound := func(toolInfos []*schema.ToolInfo) (einomodel.BaseChatModel, error) {
		cm, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client:      client,
			Model:       config.Model.Model,
			Temperature: &config.Model.Temperature,
			MaxTokens:   &config.Model.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating chat model: %w", err)
		}
		if err := cm.BindTools(toolInfos); err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
		return cm, nil
	}

	primaryInfos, err := tools.Infos(ctx, suite.Primary)
	if err != nil {
		return nil, err
	}
	primaryInfos = append(primaryInfos, tools.HandoffInfos()...)

	out := &AssistantModels{}
	if out.Primary, err = newBound(primaryInfos); err != nil {
		return nil, fmt.Errorf("primary assistant: %w", err)
	}

	for _, d := range model.SpecializedDialogStates {
		partition, ok := suite.PartitionFor(d)
		if !ok {
			return nil, fmt.Errorf("no tool partition for assistant %q", d)
		}
		infos, err := tools.Infos(ctx, partition.All())
		if err != nil {
			return nil, err
		}
		infos = append(infos, tools.CompleteOrEscalateInfo())

		cm, err := newBound(infos)
		if err != nil {
			return nil, fmt.Errorf("%s assistant: %w", d, err)
		}
		switch d {
		case model.DialogUpdateFlight:
			out.Flight = cm
		case model.DialogBookCarRental:
			out.CarRental = cm
		case model.DialogBookHotel:
			out.Hotel = cm
		case model.DialogBookExcursion:
			out.Excursion = cm
		}
	}

	logx.Debug().Str("model", config.Model.Model).Msg("Assistant chat models ready")
	return out, nil
}

// NewAssistantPreHandler builds the model input for an assistant: its rendered
// system prompt followed by the windowed transcript from state. The incoming
// edge value is ignored; the transcript in state is the single source of
// truth.
func NewAssistantPreHandler(assistant model.DialogState, window conversations.Window) func(context.Context, []*schema.Message, *model.TravelState) ([]*schema.Message, error) {
	return func(ctx context.Context, _ []*schema.Message, state *model.TravelState) ([]*schema.Message, error) {
		systemPrompt, err := prompts.RenderSystem(ctx, assistant, state.UserInfo, time.Now())
		if err != nil {
			return nil, err
		}
		recent := window.Apply(state.Messages)
		out := make([]*schema.Message, 0, len(recent)+1)
		out = append(out, schema.SystemMessage(systemPrompt))
		return append(out, recent...), nil
	}
}

// NewAssistantNode wraps a chat model in a lambda that re-prompts when the
// model produces degenerate output (no tool calls and no text).
func NewAssistantNode(name string, cm einomodel.BaseChatModel) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
		return generateWithRetry(ctx, name, cm, input)
	})
}

func generateWithRetry(ctx context.Context, name string, cm einomodel.BaseChatModel, input []*schema.Message) (*schema.Message, error) {
	messages := input
	for attempt := 1; attempt <= assistantMaxAttempts; attempt++ {
		out, err := cm.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(err).Str("node", name).Msg("Chat model call failed")
			return nil, fmt.Errorf("%s: generate: %w", name, err)
		}
		if !degenerate(out) {
			return out, nil
		}
		logx.Warn().Str("node", name).Int("attempt", attempt).Msg("Empty model output, re-prompting")
		messages = append(messages, schema.UserMessage("Respond with a real output."))
	}
	return nil, fmt.Errorf("%s: model produced no output after %d attempts", name, assistantMaxAttempts)
}

func degenerate(msg *schema.Message) bool {
	return msg == nil || (len(msg.ToolCalls) == 0 && strings.TrimSpace(msg.Content) == "")
}

// NewAssistantPostHandler appends the assistant's output to the transcript and
// persists it. Providers occasionally omit tool call ids; missing ids are
// synthesized so tool results can be paired later. Ids must stay unique across
// the whole thread transcript, not just the current turn, so they are random.
func NewAssistantPostHandler(name string, repo model.ThreadRepository) func(context.Context, *schema.Message, *model.TravelState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.TravelState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("%s: nil model output", name)
		}
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				out.ToolCalls[i].ID = "call_" + uuid.NewString()
			}
		}

		state.Messages = model.AppendMessages(state.Messages, out)

		if repo != nil {
			if err := repo.AppendMessages(ctx, state.ThreadID, out); err != nil {
				logx.Error().Err(err).Str("thread_id", state.ThreadID).Str("node", name).
					Msg("Error persisting assistant message")
			}
		}

		if len(out.ToolCalls) > 0 {
			logx.Debug().Str("node", name).Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Str("node", name).Msg("Assistant response ready")
		}
		return out, nil
	}
}
