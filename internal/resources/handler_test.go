package resources

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newEngine(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterRoutes(g.Group("/api"), g.Group("/api/admin"), svc)
	return g
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, _ = fw.Write(content)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestResourceHandlers(t *testing.T) {
	svc, _ := newTestService()
	g := newEngine(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/resources/categories", strings.NewReader(`{"name":"Templates"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var env struct {
		Data Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	catID := env.Data.ID

	// duplicate name
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/resources/categories", strings.NewReader(`{"name":"templates"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)

	// upload an item
	body, ct := multipartBody(t, map[string]string{"title": "Cap table"}, "cap.xlsx", []byte("xlsx-bytes"))
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/resources/categories/"+catID+"/items", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var itemEnv struct {
		Data Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &itemEnv))
	require.Equal(t, "cap.xlsx", itemEnv.Data.FileName)
	require.NotContains(t, w.Body.String(), "objectKey")

	// public download redirects
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resources/categories/"+catID+"/items/"+itemEnv.Data.ID+"/download", nil))
	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "memory://resources/"+catID+"/"))

	// neither file nor url
	body, ct = multipartBody(t, map[string]string{"title": "empty"}, "", nil)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/resources/categories/"+catID+"/items", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// public listing
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resources/categories/"+catID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Cap table")

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resources/categories/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItem_TooLarge(t *testing.T) {
	svc, _ := newTestService()
	cat, err := svc.CreateCategory(t.Context(), CategoryInput{Name: "Big"})
	require.NoError(t, err)
	g := newEngine(svc)

	body, ct := multipartBody(t, nil, "huge.bin", bytes.Repeat([]byte("x"), MaxUploadSize+2<<20))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/resources/categories/"+cat.ID+"/items", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
