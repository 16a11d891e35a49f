// Package provider abstracts LLM vendors behind a single adapter interface
// built on the Eino framework. Adapters translate between the canonical
// conversation model and each vendor's wire format, and enforce strict
// tool-call correlation on every response.
package provider

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/openagent-dev/openagent/internal/message"
)

// Adapter is a vendor-specific chat completion backend.
type Adapter interface {
	// ID returns the adapter identifier, e.g. "anthropic".
	ID() string

	// Name returns the human-readable vendor name.
	Name() string

	// Models returns the vendor's model catalog.
	Models() []Model

	// Complete sends the conversation and returns the assistant's reply in
	// canonical form.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request carries one completion request in canonical form.
type Request struct {
	System string
	Turns  []message.Turn
	Tools  []*schema.ToolInfo
}

// Response is the canonical form of an assistant reply.
type Response struct {
	Text  string
	Calls []message.ToolCall
	Usage Usage
}

// Usage holds token accounting for one completion.
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Model describes one entry of a vendor's catalog.
type Model struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ProviderID      string `json:"providerID"`
	ContextLength   int    `json:"contextLength"`
	MaxOutputTokens int    `json:"maxOutputTokens,omitempty"`
	SupportsTools   bool   `json:"supportsTools"`
}
