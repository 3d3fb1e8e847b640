package aichat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/sse"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SystemPrompt frames every conversation.
const SystemPrompt = "You are the Founders Portal assistant. Help early-stage founders find incubators, " +
	"seed and angel investors and startup resources. Be concise and practical. " +
	"If the user wants to talk to the team, suggest scheduling a meeting."

type chatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history" binding:"omitempty,dive"`
}

// Handler serves the assistant endpoints.
type Handler struct {
	provider Provider
	meetings MeetingRepository
	timeout  time.Duration
}

// NewHandler wraps provider; a zero timeout leaves streams bounded only by the client.
func NewHandler(provider Provider, meetings MeetingRepository, timeout time.Duration) *Handler {
	return &Handler{provider: provider, meetings: meetings, timeout: timeout}
}

// RegisterRoutes mounts the widget endpoints on public (/api) and the meeting list on admin (/api/admin).
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	g := public.Group("/ai-chat")
	g.POST("/chat", h.chat)
	g.POST("/analyze-file", h.analyzeFile)
	g.POST("/schedule-meeting", h.scheduleMeeting)
	admin.GET("/meetings", h.listMeetings)
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		response.Fail(c, http.StatusBadRequest, "message is required")
		return
	}
	p := Prompt{System: SystemPrompt, History: trimHistory(req.History), Message: msg}
	var extra []sse.Chunk
	if WantsMeeting(msg) {
		extra = append(extra, schedulerChunk(msg))
	}
	h.stream(c, "chat", p, extra...)
}

func (h *Handler) analyzeFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAnalyzeSize+(1<<20))
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error())
			return
		}
		response.Fail(c, http.StatusBadRequest, "file is required")
		return
	}
	text, err := extractText(fh)
	switch {
	case errors.Is(err, ErrUnsupportedFile):
		response.Fail(c, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		logger.Errorf("analyze-file: %v", err)
		response.Fail(c, http.StatusBadRequest, "could not read file")
		return
	}
	if strings.TrimSpace(text) == "" {
		response.Fail(c, http.StatusBadRequest, "file is empty")
		return
	}
	p := Prompt{System: SystemPrompt, Message: analyzePrompt(fh.Filename, text, c.PostForm("prompt"))}
	h.stream(c, "analyze", p)
}

// stream relays the provider's reply as SSE. Until the first fragment is
// written a failure can still be answered with a JSON envelope.
func (h *Handler) stream(c *gin.Context, endpoint string, p Prompt, extra ...sse.Chunk) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	w := sse.NewWriter(c.Writer)
	scheduled := false
	err := h.provider.Stream(ctx, p, func(ch sse.Chunk) error {
		if ch.Content == "" && !ch.ShowScheduler {
			return nil
		}
		scheduled = scheduled || ch.ShowScheduler
		return w.Send(ch)
	})
	if err != nil {
		if c.Request.Context().Err() != nil {
			metrics.ChatStreams.WithLabelValues(endpoint, "canceled").Inc()
			logger.Debugf("%s stream canceled by client", endpoint)
			return
		}
		metrics.ChatStreams.WithLabelValues(endpoint, "error").Inc()
		logger.Errorf("%s stream: %v", endpoint, err)
		if !w.Started() {
			response.Fail(c, http.StatusBadGateway, "AI service is unavailable, please try again later")
			return
		}
		_ = w.Send(sse.Chunk{Error: "The assistant stopped unexpectedly, please try again."})
		_ = w.Done()
		return
	}
	for _, ch := range extra {
		// the provider already offered the scheduler with its own details
		if ch.ShowScheduler && scheduled {
			continue
		}
		if err := w.Send(ch); err != nil {
			return
		}
	}
	if err := w.Done(); err != nil {
		logger.Debugf("%s stream: %v", endpoint, err)
		return
	}
	metrics.ChatStreams.WithLabelValues(endpoint, "ok").Inc()
}

func (h *Handler) scheduleMeeting(c *gin.Context) {
	var m Meeting
	if err := c.ShouldBindJSON(&m); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	m.ID = uuid.NewString()
	m.Status = MeetingRequested
	m.CreatedAt = time.Now().UTC()
	if err := h.meetings.Create(c.Request.Context(), &m); err != nil {
		logger.Errorf("store meeting request: %v", err)
		response.Fail(c, http.StatusInternalServerError, "could not store meeting request")
		return
	}
	logger.Infof("meeting requested by %s", m.Email)
	c.JSON(http.StatusCreated, response.Envelope{Success: true, Data: m, Message: "Meeting request received. We will get back to you shortly."})
}

func (h *Handler) listMeetings(c *gin.Context) {
	list, err := h.meetings.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list meetings: %v", err)
		response.Fail(c, http.StatusInternalServerError, "could not list meetings")
		return
	}
	response.OK(c, list)
}
