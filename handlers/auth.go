package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/admins"
	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/models"
	"github.com/foundersportal/portal/backend/go-services/internal/oidc"
	"github.com/foundersportal/portal/backend/go-services/internal/sessions"
	"github.com/foundersportal/portal/backend/go-services/internal/tokens"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/middleware"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	RefreshCookie     = "refresh_token"
	refreshCookiePath = "/api/auth"
)

// GoogleLoginRequest carries the ID token from Google Identity Services.
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// LoginRequest is used for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned by every endpoint that issues tokens.
type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int           `json:"expiresIn"`
	Admin       *models.Admin `json:"admin"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg          *config.Config
	admins       *admins.Service
	sessions     *sessions.Service
	issuer       *tokens.Issuer
	google       middleware.Verifier
	loginLimiter gin.HandlerFunc
}

// NewAuthHandler wires the handler. google may be nil when Google sign-in is
// not configured; loginLimiter may be nil to disable login throttling.
func NewAuthHandler(cfg *config.Config, a *admins.Service, s *sessions.Service, iss *tokens.Issuer, google middleware.Verifier, loginLimiter gin.HandlerFunc) *AuthHandler {
	if loginLimiter == nil {
		loginLimiter = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{cfg: cfg, admins: a, sessions: s, issuer: iss, google: google, loginLimiter: loginLimiter}
}

// Register routes under /auth. requireAuth guards the endpoints that need a signed-in admin.
func (h *AuthHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/google", h.loginLimiter, h.GoogleLogin)
	a.POST("/login", h.loginLimiter, h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/me", requireAuth, h.Me)
	a.GET("/csrf-token", h.CSRFToken)
}

// RegisterAdminManagement mounts admin CRUD on an authenticated group. Only
// superadmins reach it.
func (h *AuthHandler) RegisterAdminManagement(admin *gin.RouterGroup) {
	g := admin.Group("/admins", middleware.RequireRole(models.RoleSuperAdmin))
	g.GET("", h.listAdmins)
	g.POST("", h.createAdmin)
	g.PUT("/:id", h.updateAdmin)
	g.DELETE("/:id", h.deleteAdmin)
}

// GoogleLogin verifies a Google ID token and signs the admin in.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		response.Fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	tok, err := h.google.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		logger.Warnf("google token rejected: %v", err)
		response.Fail(c, http.StatusUnauthorized, "invalid Google credential")
		return
	}
	id, err := oidc.IdentityFrom(tok)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}
	a, err := h.admins.LoginWithGoogle(c.Request.Context(), id)
	if err != nil {
		h.authFailed(c, err)
		return
	}
	h.issueTokens(c, a)
}

// Login implements password sign-in for admins that have a password set.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	a, err := h.admins.PasswordLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.authFailed(c, err)
		return
	}
	h.issueTokens(c, a)
}

// Refresh exchanges a refresh token for a new token pair. The presented
// session is deleted, so a refresh token works exactly once.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		response.Fail(c, http.StatusUnauthorized, "refresh token required")
		return
	}
	claims, err := h.issuer.ParseRefresh(raw)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	ctx := c.Request.Context()
	sess, err := h.sessions.Consume(ctx, claims.SessionID)
	if err != nil {
		logger.Errorf("session lookup: %v", err)
		response.Fail(c, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if sess == nil || sess.AdminID != claims.Subject {
		h.clearCookies(c)
		response.Fail(c, http.StatusUnauthorized, "session expired, please sign in again")
		return
	}
	a, err := h.admins.Get(ctx, sess.AdminID)
	if err != nil || !a.Active {
		h.clearCookies(c)
		response.Fail(c, http.StatusUnauthorized, "account is no longer active")
		return
	}
	next, err := h.sessions.CreateSession(ctx, sess.AdminID, sess.UserAgent, h.issuer.RefreshTTL())
	if err != nil {
		logger.Errorf("rotate session: %v", err)
		response.Fail(c, http.StatusInternalServerError, "failed to refresh session")
		return
	}
	h.writeTokens(c, a, next)
}

// Logout deletes the refresh session, revokes the current access token and
// clears the auth cookies. It succeeds even when the tokens are already invalid.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := h.refreshTokenFrom(c); raw != "" {
		if claims, err := h.issuer.ParseRefresh(raw); err == nil {
			if err := h.sessions.Delete(ctx, claims.SessionID); err != nil {
				logger.Errorf("delete session: %v", err)
				response.Fail(c, http.StatusInternalServerError, "failed to remove session")
				return
			}
		}
	}
	if raw, _ := middleware.BearerToken(c); raw != "" {
		if claims, err := h.issuer.ParseAccess(raw); err == nil && claims.ExpiresAt != nil {
			if err := sessions.BlacklistAccessToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
				logger.Errorf("blacklist access token: %v", err)
				response.Fail(c, http.StatusInternalServerError, "failed to revoke access token")
				return
			}
		}
	}
	h.clearCookies(c)
	response.Message(c, "logged out")
}

// Me returns the signed-in admin.
func (h *AuthHandler) Me(c *gin.Context) {
	a, err := h.admins.Get(c.Request.Context(), middleware.ClaimString(c, "sub"))
	if err != nil {
		if errors.Is(err, admins.ErrNotFound) {
			response.Fail(c, http.StatusUnauthorized, "account not found")
			return
		}
		logger.Errorf("load admin: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, a)
}

// CSRFToken issues the double-submit token. The cookie is readable by the
// dashboard script, which echoes it in the X-CSRF-Token header.
func (h *AuthHandler) CSRFToken(c *gin.Context) {
	tok := middleware.NewCSRFToken()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CSRFCookie, tok, int(h.issuer.RefreshTTL().Seconds()), "/", h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, false)
	response.OK(c, gin.H{"csrfToken": tok})
}

func (h *AuthHandler) issueTokens(c *gin.Context, a *models.Admin) {
	sess, err := h.sessions.CreateSession(c.Request.Context(), a.ID, c.Request.UserAgent(), h.issuer.RefreshTTL())
	if err != nil {
		logger.Errorf("create session: %v", err)
		response.Fail(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.writeTokens(c, a, sess)
}

func (h *AuthHandler) writeTokens(c *gin.Context, a *models.Admin, sess *sessions.Session) {
	access, exp, err := h.issuer.GenerateAccessToken(a)
	if err != nil {
		logger.Errorf("access token: %v", err)
		response.Fail(c, http.StatusInternalServerError, "failed to create access token")
		return
	}
	refresh, err := h.issuer.GenerateRefreshToken(a.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		logger.Errorf("refresh token: %v", err)
		response.Fail(c, http.StatusInternalServerError, "failed to create refresh token")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookie, access, int(time.Until(exp).Seconds()), "/", h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
	c.SetCookie(RefreshCookie, refresh, int(time.Until(sess.ExpiresAt).Seconds()), refreshCookiePath, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
	response.OK(c, LoginResponse{AccessToken: access, ExpiresIn: int(h.issuer.AccessTTL().Seconds()), Admin: a})
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookie, "", -1, "/", h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, refreshCookiePath, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}
	var req refreshRequest
	if c.Request.ContentLength != 0 && c.ShouldBindJSON(&req) == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) authFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admins.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, admins.ErrNotAuthorized):
		response.Fail(c, http.StatusForbidden, err.Error())
	default:
		logger.Errorf("sign-in: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *AuthHandler) listAdmins(c *gin.Context) {
	list, err := h.admins.List(c.Request.Context())
	if err != nil {
		adminFail(c, err)
		return
	}
	response.OK(c, list)
}

func (h *AuthHandler) createAdmin(c *gin.Context) {
	var in admins.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	a, err := h.admins.Create(c.Request.Context(), in)
	if err != nil {
		adminFail(c, err)
		return
	}
	response.Created(c, a)
}

func (h *AuthHandler) updateAdmin(c *gin.Context) {
	var in admins.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	a, err := h.admins.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		adminFail(c, err)
		return
	}
	response.OK(c, a)
}

func (h *AuthHandler) deleteAdmin(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), middleware.ClaimString(c, "sub"), c.Param("id")); err != nil {
		adminFail(c, err)
		return
	}
	response.Message(c, "admin deleted")
}

func adminFail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, err)
	case errors.Is(err, admins.ErrWeakPassword), errors.Is(err, admins.ErrSelfDelete):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, admins.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, admins.ErrDuplicate):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		logger.Errorf("admins: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
