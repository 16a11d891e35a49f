package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/openagent-dev/openagent/internal/logging"
)

// chatAdapter implements Adapter on top of an Eino ToolCallingChatModel.
// Vendor constructors differ only in how the chat model is built.
type chatAdapter struct {
	id        string
	name      string
	models    []Model
	chatModel model.ToolCallingChatModel
}

func (a *chatAdapter) ID() string      { return a.id }
func (a *chatAdapter) Name() string    { return a.name }
func (a *chatAdapter) Models() []Model { return a.models }

func (a *chatAdapter) Complete(ctx context.Context, req *Request) (*Response, error) {
	msgs, err := EncodeConversation(req.System, req.Turns)
	if err != nil {
		return nil, err
	}

	cm := a.chatModel
	if len(req.Tools) > 0 {
		cm, err = cm.WithTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	out, err := cm.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	resp, err := DecodeResponse(out)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Str("provider", a.id).
		Int("calls", len(resp.Calls)).
		Int("inputTokens", resp.Usage.Input).
		Int("outputTokens", resp.Usage.Output).
		Msg("completion received")
	return resp, nil
}
