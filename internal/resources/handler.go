package resources

import (
	"errors"
	"net/http"

	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MaxUploadSize is the largest accepted resource file.
const MaxUploadSize = 25 << 20

// RegisterRoutes mounts public browsing on public (/api) and management on admin (/api/admin).
func RegisterRoutes(public, admin *gin.RouterGroup, svc *Service) {
	pub := public.Group("/resources/categories")
	pub.GET("", func(c *gin.Context) {
		cats, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, cats)
	})
	pub.GET("/:id", func(c *gin.Context) {
		cat, err := svc.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, cat)
	})
	pub.GET("/:id/items/:itemId/download", func(c *gin.Context) {
		u, err := svc.ItemDownloadURL(c.Request.Context(), c.Param("id"), c.Param("itemId"))
		if err != nil {
			fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, u)
	})

	adm := admin.Group("/resources/categories")
	adm.POST("", func(c *gin.Context) {
		var in CategoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.Created(c, cat)
	})
	adm.PUT("/:id", func(c *gin.Context) {
		var in CategoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		cat, err := svc.UpdateCategory(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, cat)
	})
	adm.DELETE("/:id", func(c *gin.Context) {
		if err := svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		response.Message(c, "category deleted")
	})
	adm.POST("/:id/items", addItem(svc))
	adm.DELETE("/:id/items/:itemId", func(c *gin.Context) {
		if err := svc.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
			fail(c, err)
			return
		}
		response.Message(c, "item deleted")
	})
}

func addItem(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > MaxUploadSize+1<<20 {
			response.Fail(c, http.StatusRequestEntityTooLarge, "file exceeds the 25 MB limit")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)
		if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Fail(c, http.StatusRequestEntityTooLarge, "file exceeds the 25 MB limit")
				return
			}
			response.Fail(c, http.StatusBadRequest, "expected a multipart form")
			return
		}
		in := ItemInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			URL:         c.PostForm("url"),
		}
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			if fh.Size > MaxUploadSize {
				response.Fail(c, http.StatusRequestEntityTooLarge, "file exceeds the 25 MB limit")
				return
			}
			f, err := fh.Open()
			if err != nil {
				response.Fail(c, http.StatusBadRequest, "cannot read uploaded file")
				return
			}
			defer f.Close()
			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			in.File = &Upload{Name: fh.Filename, Size: fh.Size, ContentType: ct, Body: f}
		case !errors.Is(err, http.ErrMissingFile):
			response.Fail(c, http.StatusBadRequest, "invalid multipart form")
			return
		}

		it, err := svc.AddItem(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.Created(c, it)
	}
}

func fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, err)
	case errors.Is(err, ErrItemSource):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, "category not found")
	case errors.Is(err, ErrItemNotFound):
		response.Fail(c, http.StatusNotFound, "item not found")
	case errors.Is(err, ErrDuplicate):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		logger.Errorf("resources: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
