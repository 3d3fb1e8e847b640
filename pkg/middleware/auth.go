package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/sessions"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
)

// AccessCookie is the httpOnly cookie carrying the access token for browser sessions.
const AccessCookie = "access_token"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// BearerToken extracts the raw token from the Authorization header or the access cookie.
// fromCookie is true when only the cookie carried it.
func BearerToken(c *gin.Context) (raw string, fromCookie bool) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), false
		}
		return "", false
	}
	if v, err := c.Cookie(AccessCookie); err == nil && v != "" {
		return v, true
	}
	return "", false
}

// AuthMiddleware returns a Gin middleware that verifies access tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := BearerToken(c)
		if raw == "" {
			if c.GetHeader("Authorization") != "" {
				response.Fail(c, http.StatusUnauthorized, "invalid Authorization header")
				return
			}
			response.Fail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			response.Fail(c, http.StatusUnauthorized, "failed to parse claims")
			return
		}

		if jti, _ := claims["jti"].(string); jti != "" {
			revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), jti)
			if err != nil {
				response.Fail(c, http.StatusInternalServerError, "token check failed")
				return
			}
			if revoked {
				response.Fail(c, http.StatusUnauthorized, "token has been revoked")
				return
			}
		}

		c.Set("claims", claims)
		c.Set("rawToken", raw)
		c.Next()
	}
}

// ClaimString reads a string claim set by AuthMiddleware.
func ClaimString(c *gin.Context, key string) string {
	v, ok := c.Get("claims")
	if !ok {
		return ""
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := cm[key].(string)
	return s
}

// ClaimExpiry returns the exp claim, or the zero time when absent.
func ClaimExpiry(c *gin.Context) time.Time {
	v, ok := c.Get("claims")
	if !ok {
		return time.Time{}
	}
	cm, _ := v.(map[string]interface{})
	if f, ok := cm["exp"].(float64); ok {
		return time.Unix(int64(f), 0)
	}
	return time.Time{}
}

// RequireRole rejects requests whose role claim is not listed. superadmin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ClaimString(c, "role")
		if role == "superadmin" {
			c.Next()
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Fail(c, http.StatusForbidden, "insufficient permissions")
	}
}
