package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/model"
	logx "github.com/tripdesk/server/pkg/logger"
)

// UserInfoFetcher resolves a passenger's booked tickets and flights into the
// free-form context block the assistants are prompted with.
type UserInfoFetcher interface {
	UserFlightInfo(ctx context.Context, passengerID string) (string, error)
}

// NewFetchUserInfoPreHandler seeds the graph state from the turn: the restored
// thread record plus the new user query. Runs once per turn, before any
// routing happens.
func NewFetchUserInfoPreHandler(repo model.ThreadRepository) func(context.Context, *model.Turn, *model.TravelState) (*model.Turn, error) {
	return func(ctx context.Context, in *model.Turn, state *model.TravelState) (*model.Turn, error) {
		if in == nil {
			return nil, fmt.Errorf("nil turn input")
		}
		state.ThreadID = in.Input.ThreadID
		state.PassengerID = in.Input.PassengerID

		if in.Record != nil {
			state.Messages = model.AppendMessages(nil, in.Record.Messages...)
			state.DialogStack = model.ApplyDialogOp(in.Record.DialogStack, model.KeepDialog())
		}

		userMsg := schema.UserMessage(in.Input.Query)
		state.Messages = model.AppendMessages(state.Messages, userMsg)

		if repo != nil {
			if err := repo.AppendMessages(ctx, state.ThreadID, userMsg); err != nil {
				logx.Error().Err(err).Str("thread_id", state.ThreadID).
					Msg("Error persisting user message")
			}
		}

		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("active_assistant", state.ActiveAssistant().String()).
			Int("history_len", len(state.Messages)).
			Msg("Turn started")
		return in, nil
	}
}

// NewFetchUserInfoNode resolves the passenger's flight details into state.
// A turn without a passenger id degrades to an empty context block instead of
// failing: the assistants simply see no booked flights.
func NewFetchUserInfoNode(fetcher UserInfoFetcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *model.Turn) ([]*schema.Message, error) {
		var passengerID string
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.TravelState) error {
			passengerID = state.PassengerID
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		var userInfo string
		if passengerID != "" && fetcher != nil {
			info, err := fetcher.UserFlightInfo(ctx, passengerID)
			if err != nil {
				return nil, fmt.Errorf("fetch user flight info: %w", err)
			}
			userInfo = info
		}

		var messages []*schema.Message
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.TravelState) error {
			state.UserInfo = userInfo
			messages = state.Messages
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return messages, nil
	})
}
