package aichat

import (
	"context"
	"fmt"

	"github.com/foundersportal/portal/backend/go-services/internal/sse"
	"google.golang.org/genai"
)

// GeminiProvider streams replies from the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) Stream(ctx context.Context, p Prompt, emit func(sse.Chunk) error) error {
	contents := buildContents(p)
	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := emit(sse.Chunk{Content: text}); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildContents maps history roles onto Gemini's user/model roles.
func buildContents(p Prompt) []*genai.Content {
	h := trimHistory(p.History)
	contents := make([]*genai.Content, 0, len(h)+1)
	for _, m := range h {
		if m.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(p.Message, genai.RoleUser))
}
