package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	"github.com/foundersportal/portal/backend/go-services/internal/directory/service"
	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MaxImportSize bounds the uploaded spreadsheet.
const MaxImportSize = 10 << 20

// RegisterRoutes mounts the read-only listing on public and the management
// endpoints on admin. Both groups are expected to be rooted at /api and
// /api/admin respectively, with auth already applied to admin.
func RegisterRoutes[T directory.Record](public, admin *gin.RouterGroup, svc *service.Service[T]) {
	seg := "/" + svc.Kind().Segment

	public.GET(seg, list(svc))
	public.GET(seg+"/:id", get(svc))

	admin.GET(seg, list(svc))
	admin.POST(seg, create(svc))
	admin.GET(seg+"/export", export(svc))
	admin.POST(seg+"/import", importFile(svc))
	admin.GET(seg+"/:id", get(svc))
	admin.PUT(seg+"/:id", update(svc))
	admin.DELETE(seg+"/:id", remove(svc))
}

func list[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), directory.FilterFromQuery(c.Request.URL.Query()))
		if err != nil {
			logger.Errorf("list %s: %v", svc.Kind().Name, err)
			response.Fail(c, http.StatusInternalServerError, "failed to load records")
			return
		}
		response.OK(c, items)
	}
}

func get[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, svc, err)
			return
		}
		response.OK(c, item)
	}
}

func create[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		item := svc.Kind().New()
		if err := c.ShouldBindJSON(item); err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		out, err := svc.Create(c.Request.Context(), item)
		if err != nil {
			fail(c, svc, err)
			return
		}
		response.Created(c, out)
	}
}

func update[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		item := svc.Kind().New()
		if err := c.ShouldBindJSON(item); err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		out, err := svc.Update(c.Request.Context(), c.Param("id"), item)
		if err != nil {
			fail(c, svc, err)
			return
		}
		response.OK(c, out)
	}
}

func remove[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, svc, err)
			return
		}
		response.Message(c, "deleted")
	}
}

func importFile[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportSize+1<<20)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Fail(c, http.StatusRequestEntityTooLarge, "file is too large")
				return
			}
			response.Fail(c, http.StatusBadRequest, "file is required")
			return
		}
		if fh.Size > MaxImportSize {
			response.Fail(c, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		var format tabular.Format
		if f := c.PostForm("format"); f != "" {
			format, err = tabular.ParseFormat(f)
		} else {
			format, err = tabular.FormatFromFilename(fh.Filename)
		}
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "cannot read uploaded file")
			return
		}
		defer f.Close()

		res, err := svc.Import(c.Request.Context(), format, f)
		if err != nil {
			if errors.Is(err, tabular.ErrMissingColumn) || errors.Is(err, tabular.ErrMissingHeader) {
				response.Fail(c, http.StatusBadRequest, err.Error())
				return
			}
			logger.Warnf("import %s: %v", svc.Kind().Name, err)
			response.Fail(c, http.StatusBadRequest, "could not parse file")
			return
		}
		response.OK(c, res)
	}
}

func export[T directory.Record](svc *service.Service[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := tabular.CSV
		if q := c.Query("format"); q != "" {
			f, err := tabular.ParseFormat(q)
			if err != nil {
				response.Fail(c, http.StatusBadRequest, err.Error())
				return
			}
			format = f
		}
		var buf bytes.Buffer
		if err := svc.Export(c.Request.Context(), format, &buf, directory.FilterFromQuery(c.Request.URL.Query())); err != nil {
			logger.Errorf("export %s: %v", svc.Kind().Name, err)
			response.Fail(c, http.StatusInternalServerError, "export failed")
			return
		}
		name := fmt.Sprintf("%s-%s.%s", svc.Kind().Segment, time.Now().UTC().Format("20060102"), format)
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func fail[T directory.Record](c *gin.Context, svc *service.Service[T], err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, err)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "record not found")
	default:
		logger.Errorf("%s: %v", svc.Kind().Name, err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
