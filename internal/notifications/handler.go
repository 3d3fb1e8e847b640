package notifications

import (
	"errors"
	"net/http"

	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/middleware"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type sendRequest struct {
	Recipients []Recipient `json:"recipients"`
}

// RegisterRoutes mounts subscription endpoints on public (/api), template
// management on templates (/api/templates, authenticated) and subscriber and
// history views on admin (/api/admin).
func RegisterRoutes(public, templates, admin *gin.RouterGroup, svc *Service) {
	public.POST("/user/subscribe", func(c *gin.Context) {
		var in SubscribeInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.ValidationFailed(c, err)
			return
		}
		sub, created, err := svc.Subscribe(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		if !created {
			c.JSON(http.StatusOK, response.Envelope{Success: true, Data: sub, Message: "already subscribed"})
			return
		}
		c.JSON(http.StatusCreated, response.Envelope{Success: true, Data: sub, Message: "subscribed"})
	})
	public.POST("/user/unsubscribe", func(c *gin.Context) {
		var in struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			response.ValidationFailed(c, err)
			return
		}
		if err := svc.Unsubscribe(c.Request.Context(), in.Email); err != nil {
			fail(c, err)
			return
		}
		response.Message(c, "unsubscribed")
	})

	templates.GET("", func(c *gin.Context) {
		list, err := svc.ListTemplates(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, list)
	})
	templates.GET("/:id", func(c *gin.Context) {
		t, err := svc.GetTemplate(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, t)
	})
	templates.POST("", func(c *gin.Context) {
		var in TemplateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.ValidationFailed(c, err)
			return
		}
		t, err := svc.CreateTemplate(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.Created(c, t)
	})
	templates.PUT("/:id", func(c *gin.Context) {
		var in TemplateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.ValidationFailed(c, err)
			return
		}
		t, err := svc.UpdateTemplate(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, t)
	})
	templates.DELETE("/:id", func(c *gin.Context) {
		if err := svc.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		response.Message(c, "template deleted")
	})
	templates.POST("/:id/preview", func(c *gin.Context) {
		// sample recipient is optional
		var r Recipient
		_ = c.ShouldBindJSON(&r)
		if r.Email == "" {
			r.Email = "subscriber@example.com"
		}
		p, err := svc.PreviewTemplate(c.Request.Context(), c.Param("id"), r)
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, p)
	})
	templates.POST("/:id/send", func(c *gin.Context) {
		var req sendRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				response.ValidationFailed(c, err)
				return
			}
		}
		n, err := svc.Send(c.Request.Context(), c.Param("id"), req.Recipients, middleware.ClaimString(c, "email"))
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, n)
	})

	admin.GET("/subscribers", func(c *gin.Context) {
		list, err := svc.ListSubscribers(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, list)
	})
	admin.DELETE("/subscribers/:id", func(c *gin.Context) {
		if err := svc.DeleteSubscriber(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		response.Message(c, "subscriber deleted")
	})
	admin.GET("/notifications", func(c *gin.Context) {
		list, err := svc.ListNotifications(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.OK(c, list)
	})
}

func fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, err)
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, ErrDuplicateTemplate), errors.Is(err, ErrDuplicateEmail):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoRecipients):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("notifications: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
