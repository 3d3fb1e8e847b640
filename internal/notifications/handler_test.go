package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterRoutes(g.Group("/api"), g.Group("/api/templates"), g.Group("/api/admin"), svc)
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSubscribeHandlers(t *testing.T) {
	g := newEngine(NewMemoryService(LogMailer{}, 1))

	w := do(g, http.MethodPost, "/api/user/subscribe", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	bad := decode[Subscriber](t, w)
	require.Len(t, bad.Errors, 1)
	assert.Equal(t, "email", bad.Errors[0].Field)

	w = do(g, http.MethodPost, "/api/user/subscribe", `{"email":"ada@example.com","name":"Ada"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sub := decode[Subscriber](t, w).Data

	w = do(g, http.MethodPost, "/api/user/subscribe", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already subscribed", decode[Subscriber](t, w).Message)

	w = do(g, http.MethodPost, "/api/user/unsubscribe", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodPost, "/api/user/unsubscribe", `{"email":"who@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(g, http.MethodGet, "/api/admin/subscribers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]Subscriber](t, w).Data, 1)

	w = do(g, http.MethodDelete, "/api/admin/subscribers/"+sub.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodDelete, "/api/admin/subscribers/"+sub.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateHandlers(t *testing.T) {
	m := &recordingMailer{}
	g := newEngine(NewMemoryService(m, 2))

	w := do(g, http.MethodPost, "/api/templates", `{"name":"news","subject":"News"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/api/templates", `{"name":"news","subject":"News for {{name}}","body":"Hello *{{name}}*","type":"newsletter"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	tpl := decode[Template](t, w).Data

	w = do(g, http.MethodPost, "/api/templates", `{"name":"news","subject":"x","body":"y"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(g, http.MethodPost, "/api/templates/"+tpl.ID+"/preview", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[Preview](t, w).Data
	assert.Equal(t, "News for Ada", p.Subject)
	assert.Contains(t, p.HTML, "<em>Ada</em>")

	w = do(g, http.MethodPost, "/api/templates/"+tpl.ID+"/send", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/api/templates/"+tpl.ID+"/send", `{"recipients":[{"email":"a@example.com","name":"A"},{"email":"b@example.com"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	n := decode[Notification](t, w).Data
	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, 2, n.Sent)

	w = do(g, http.MethodGet, "/api/admin/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]Notification](t, w).Data, 1)

	w = do(g, http.MethodPut, "/api/templates/"+tpl.ID, `{"name":"news","subject":"S","body":"B"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodGet, "/api/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]Template](t, w).Data
	require.Len(t, list, 1)
	assert.Equal(t, "S", list[0].Subject)

	w = do(g, http.MethodDelete, "/api/templates/"+tpl.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodGet, "/api/templates/"+tpl.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
