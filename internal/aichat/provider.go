// Package aichat serves the assistant widget: streamed chat replies, file
// analysis and meeting requests.
package aichat

import (
	"context"
	"fmt"
	"strings"

	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/sse"
)

// Message is one turn of the conversation history.
type Message struct {
	Role    string `json:"role" binding:"omitempty,oneof=user assistant model"`
	Content string `json:"content"`
}

// Prompt is everything a provider needs to produce a reply.
type Prompt struct {
	System  string
	History []Message
	Message string
}

// Provider streams a reply, calling emit for each chunk. Model providers emit
// content only; a relay may also pass scheduler chunks through. An error
// returned by emit stops the stream and is returned as is.
type Provider interface {
	Stream(ctx context.Context, p Prompt, emit func(sse.Chunk) error) error
}

// MaxHistory bounds how many earlier turns are forwarded to the model.
const MaxHistory = 20

// NewProvider builds the provider selected by AI_PROVIDER.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "echo":
		return EchoProvider{}, nil
	case "upstream":
		if cfg.UpstreamURL == "" {
			return nil, fmt.Errorf("AI_UPSTREAM_URL is required for the upstream provider")
		}
		return NewUpstreamProvider(cfg.UpstreamURL, nil), nil
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
}

func trimHistory(h []Message) []Message {
	if len(h) > MaxHistory {
		return h[len(h)-MaxHistory:]
	}
	return h
}

// EchoProvider answers deterministically without a model. Used in
// development and tests.
type EchoProvider struct{}

func (EchoProvider) Stream(ctx context.Context, p Prompt, emit func(sse.Chunk) error) error {
	reply := "You said: " + strings.TrimSpace(p.Message)
	for _, part := range strings.SplitAfter(reply, " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(sse.Chunk{Content: part}); err != nil {
			return err
		}
	}
	return nil
}
