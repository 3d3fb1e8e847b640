package aichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foundersportal/portal/backend/go-services/internal/sse"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider emits parts as content, then chunks, then returns err.
type scriptedProvider struct {
	parts  []string
	chunks []sse.Chunk
	err    error
	seen   Prompt
}

func (s *scriptedProvider) Stream(ctx context.Context, p Prompt, emit func(sse.Chunk) error) error {
	s.seen = p
	for _, part := range s.parts {
		if err := emit(sse.Chunk{Content: part}); err != nil {
			return err
		}
	}
	for _, ch := range s.chunks {
		if err := emit(ch); err != nil {
			return err
		}
	}
	return s.err
}

func newEngine(p Provider, repo MeetingRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewHandler(p, repo, 0).RegisterRoutes(g.Group("/api"), g.Group("/api/admin"))
	return g
}

func postJSON(g *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func readChunks(t *testing.T, body io.Reader) []sse.Chunk {
	t.Helper()
	r := sse.NewReader(body)
	var out []sse.Chunk
	for {
		ch, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ch)
	}
}

func TestChat_StreamsEcho(t *testing.T) {
	g := newEngine(EchoProvider{}, NewMemoryMeetingRepository())
	w := postJSON(g, "/api/ai-chat/chat", `{"message":"hello world","history":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sse.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))

	var text strings.Builder
	for _, ch := range readChunks(t, w.Body) {
		assert.False(t, ch.ShowScheduler)
		text.WriteString(ch.Content)
	}
	assert.Equal(t, "You said: hello world", text.String())
}

func TestChat_SchedulerChunkBeforeDone(t *testing.T) {
	g := newEngine(EchoProvider{}, NewMemoryMeetingRepository())
	w := postJSON(g, "/api/ai-chat/chat", `{"message":"Can we schedule a meeting next week?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	chunks := readChunks(t, w.Body)
	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.True(t, last.ShowScheduler)
	assert.Equal(t, "Can we schedule a meeting next week?", last.MeetingDetails["topic"])
}

func TestChat_RelaysProviderScheduler(t *testing.T) {
	p := &scriptedProvider{
		parts:  []string{"Happy to set that up."},
		chunks: []sse.Chunk{{ShowScheduler: true, MeetingDetails: map[string]any{"date": "2026-10-20", "time": "10:00"}}},
	}
	g := newEngine(p, NewMemoryMeetingRepository())
	w := postJSON(g, "/api/ai-chat/chat", `{"message":"Please book a meeting"}`)
	require.Equal(t, http.StatusOK, w.Code)

	chunks := readChunks(t, w.Body)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Happy to set that up.", chunks[0].Content)
	assert.True(t, chunks[1].ShowScheduler)
	assert.Equal(t, "2026-10-20", chunks[1].MeetingDetails["date"])
	assert.Equal(t, "10:00", chunks[1].MeetingDetails["time"])
	assert.NotContains(t, chunks[1].MeetingDetails, "topic")
}

func TestChat_EmptyMessage(t *testing.T) {
	g := newEngine(EchoProvider{}, NewMemoryMeetingRepository())
	w := postJSON(g, "/api/ai-chat/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestChat_ProviderErrors(t *testing.T) {
	// nothing sent yet: plain 502 envelope
	g := newEngine(&scriptedProvider{err: errors.New("connection refused")}, NewMemoryMeetingRepository())
	w := postJSON(g, "/api/ai-chat/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	// failure mid-stream: error chunk then [DONE]
	g = newEngine(&scriptedProvider{parts: []string{"Hel"}, err: errors.New("reset")}, NewMemoryMeetingRepository())
	w = postJSON(g, "/api/ai-chat/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
	chunks := readChunks(t, w.Body)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Hel", chunks[0].Content)
	assert.NotEmpty(t, chunks[1].Error)
}

func fileRequest(t *testing.T, name string, content []byte, prompt string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if prompt != "" {
		require.NoError(t, mw.WriteField("prompt", prompt))
	}
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, _ = fw.Write(content)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat/analyze-file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzeFile(t *testing.T) {
	p := &scriptedProvider{parts: []string{"Looks ", "good"}}
	g := newEngine(p, NewMemoryMeetingRepository())

	w := httptest.NewRecorder()
	g.ServeHTTP(w, fileRequest(t, "pitch.md", []byte("# Pitch\nWe sell shovels."), "Is this convincing?"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, p.seen.Message, "We sell shovels.")
	assert.Contains(t, p.seen.Message, "Is this convincing?")
	assert.Contains(t, p.seen.Message, "pitch.md")
	chunks := readChunks(t, w.Body)
	require.Len(t, chunks, 2)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, fileRequest(t, "deck.pdf", []byte("%PDF-1.4"), ""))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, fileRequest(t, "huge.txt", bytes.Repeat([]byte("a"), MaxAnalyzeSize+10), ""))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat/analyze-file", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleMeeting(t *testing.T) {
	repo := NewMemoryMeetingRepository()
	g := newEngine(EchoProvider{}, repo)

	w := postJSON(g, "/api/ai-chat/schedule-meeting", `{"name":"Ada","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(g, "/api/ai-chat/schedule-meeting", `{"name":"Ada","email":"ada@example.com","topic":"Seed round"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = postJSON(g, "/api/ai-chat/schedule-meeting", `{"name":"Bob","email":"bob@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/meetings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []Meeting `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "bob@example.com", env.Data[0].Email)
	assert.Equal(t, MeetingRequested, env.Data[1].Status)
	assert.NotEmpty(t, env.Data[1].ID)
}
