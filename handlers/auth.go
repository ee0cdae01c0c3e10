package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/tokens"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/middleware"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenService is what the auth endpoints need from internal/tokens.
type TokenService interface {
	Issue(ctx context.Context, password string) (tokens.Credential, error)
	Verify(ctx context.Context, raw string) (string, error)
	Invalidate(ctx context.Context, raw string) error
}

// CookieConfig controls how the session credential is attached to responses.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler holds dependencies
type AuthHandler struct {
	tokens TokenService
	cookie CookieConfig
}

func NewAuthHandler(ts TokenService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "cms_session"
	}
	return &AuthHandler{tokens: ts, cookie: cookie}
}

// Register mounts /login, /logout and /verify-auth on rg. loginGuard (for
// example a rate limiter) runs in front of /login only; nil means none.
func (h *AuthHandler) Register(rg gin.IRoutes, loginGuard gin.HandlerFunc) {
	if loginGuard != nil {
		rg.POST("/login", loginGuard, h.Login)
	} else {
		rg.POST("/login", h.Login)
	}
	rg.POST("/logout", h.Logout)
	rg.GET("/verify-auth", h.VerifyAuth)
}

// Login checks the operator password and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Password) == "" {
		metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	cred, err := h.tokens.Issue(c.Request.Context(), req.Password)
	switch {
	case err == nil:
	case errors.Is(err, tokens.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		logger.Warnf("failed operator login from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	case errors.Is(err, tokens.ErrNotConfigured):
		metrics.LoginAttempts.WithLabelValues("unconfigured").Inc()
		logger.Errorf("login refused: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return
	default:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		logger.Errorf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.setCookie(c, cred.Token, cred.TTL())
	logger.Infof("operator logged in (jti=%s, expires %s)", cred.ID, cred.ExpiresAt.Format(time.RFC3339))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout always clears the client cookie. With a denylist attached the
// presented token is also revoked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := middleware.Credential(c, h.cookie.Name)
	err := h.tokens.Invalidate(c.Request.Context(), raw)
	h.clearCookie(c)
	if err != nil {
		logger.Errorf("logout: invalidate credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyAuth reports whether the caller holds a valid credential. It answers
// 200 in every case; "not authenticated" is a normal state for the UI.
func (h *AuthHandler) VerifyAuth(c *gin.Context) {
	_, err := middleware.VerifyRequest(c.Request.Context(), h.tokens, c, h.cookie.Name)
	if err != nil && !errors.Is(err, tokens.ErrUnauthenticated) && !errors.Is(err, tokens.ErrInvalidOrExpired) {
		logger.Errorf("verify-auth: %v", err)
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"authenticated": err == nil})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, value, int(ttl.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
