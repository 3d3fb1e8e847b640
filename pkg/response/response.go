// Package response writes the { success, data?, message? } envelope the
// dashboard and public site expect from every endpoint.
package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Envelope is the common response body.
type Envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message answers 200 with only a message.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

// Fail aborts the request with the given status and message.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg})
}

// ValidationFailed answers 400 listing field errors when err is a validator error.
func ValidationFailed(c *gin.Context, err error) {
	if out := FieldErrors(err); out != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Message: "validation failed", Errors: out})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
}

// FieldErrors converts validator errors; it returns nil for any other error.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: fieldPath(e), Message: fieldMessage(e)})
	}
	return out
}

// Describe renders err as one line, e.g. "email: Invalid email format".
func Describe(err error) string {
	fes := FieldErrors(err)
	if fes == nil {
		return err.Error()
	}
	parts := make([]string, len(fes))
	for i, fe := range fes {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "investmentRange.max" and "investedCompanies[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url":
		return "Invalid URL"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be at least " + e.Param()
	case "lte":
		return "Must be at most " + e.Param()
	case "gtefield":
		return "Must be greater than or equal to " + e.Param()
	}
	return "Invalid value"
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// The binding engine caches field names per struct type on first use, so the
// tag name func must be in place before any request is bound.
func init() { Validator() }

// Validator returns the process-wide validator. Field names in errors follow json tags;
// gin's binding engine is configured the same way.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonTagName)
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonTagName)
		}
	})
	return validate
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
