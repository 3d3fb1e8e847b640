package aichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/foundersportal/portal/backend/go-services/internal/sse"
)

// UpstreamProvider relays an external assistant service that answers with
// the same data:-line stream this service produces. Content and scheduler
// chunks are passed through unchanged; an error chunk ends the stream.
type UpstreamProvider struct {
	url    string
	client *http.Client
}

// NewUpstreamProvider uses http.DefaultClient when client is nil. Deadlines
// come from the request context.
func NewUpstreamProvider(url string, client *http.Client) *UpstreamProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &UpstreamProvider{url: url, client: client}
}

type upstreamRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history,omitempty"`
	System  string    `json:"system,omitempty"`
}

func (u *UpstreamProvider) Stream(ctx context.Context, p Prompt, emit func(sse.Chunk) error) error {
	body, err := json.Marshal(upstreamRequest{Message: p.Message, History: trimHistory(p.History), System: p.System})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", sse.ContentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	r := sse.NewReader(resp.Body)
	for {
		ch, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read upstream stream: %w", err)
		}
		if ch.Error != "" {
			return fmt.Errorf("upstream error: %s", ch.Error)
		}
		if ch.Content == "" && !ch.ShowScheduler {
			continue
		}
		if err := emit(ch); err != nil {
			return err
		}
	}
}
