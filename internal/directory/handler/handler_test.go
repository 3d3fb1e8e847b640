package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	"github.com/foundersportal/portal/backend/go-services/internal/directory/service"
	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []struct {
		Field string `json:"field"`
	} `json:"errors"`
}

func newEngine() (*gin.Engine, *service.Service[*directory.Incubator]) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	svc := service.NewMemoryService(directory.Incubators)
	RegisterRoutes(g.Group("/api"), g.Group("/api/admin"), svc)
	return g, svc
}

func do(g *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestDirectoryHandler_CRUD(t *testing.T) {
	g, _ := newEngine()

	// create
	w, env := do(g, http.MethodPost, "/api/admin/incubator-companies", `{"companyName":"Launchpad","sectors":["Fintech"],"location":"Pune"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created directory.Incubator
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	// validation
	w, env = do(g, http.MethodPost, "/api/admin/incubator-companies", `{"email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "validation failed", env.Message)
	require.Len(t, env.Errors, 2)

	// public get and list with filter
	w, _ = do(g, http.MethodGet, "/api/incubator-companies/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, env = do(g, http.MethodGet, "/api/incubator-companies?sector=fintech&location=pune", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []directory.Incubator
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	w, env = do(g, http.MethodGet, "/api/incubator-companies?q=zzz", "")
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Empty(t, list)

	// update
	w, env = do(g, http.MethodPut, "/api/admin/incubator-companies/"+created.ID, `{"companyName":"Launchpad 2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated directory.Incubator
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Launchpad 2", updated.CompanyName)

	// delete
	w, _ = do(g, http.MethodDelete, "/api/admin/incubator-companies/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(g, http.MethodGet, "/api/incubator-companies/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDirectoryHandler_ImportExport(t *testing.T) {
	g, svc := newEngine()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "incubators.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("Company Name,Sector\nOne,Fintech\nTwo,\"AI, Edtech\"\n,Nothing\n"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/incubator-companies/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var res service.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 4, res.Errors[0].Row)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/incubator-companies/export?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	recs, rowErrs, err := tabular.Read(bytes.NewReader(w.Body.Bytes()), tabular.XLSX, svc.Kind().Columns, svc.Kind().New)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, recs, 2)
	require.Equal(t, []string{"AI", "Edtech"}, recs[1].Item.Sectors)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/incubator-companies/export?format=pdf", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectoryHandler_ImportTooLarge(t *testing.T) {
	g, _ := newEngine()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "incubators.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("Company Name\n"))
	_, _ = fw.Write(bytes.Repeat([]byte("x"), MaxImportSize+2<<20))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/incubator-companies/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/incubator-companies/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
