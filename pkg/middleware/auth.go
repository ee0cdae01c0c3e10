package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/tokens"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
)

// SubjectKey is the gin context key holding the verified subject.
const SubjectKey = "subject"

// Verifier is the minimal interface the middleware depends on.
type Verifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

// Credential extracts the raw session credential from the request: the
// session cookie first, then an "Authorization: Bearer" header.
// Returns "" when neither is present.
func Credential(c *gin.Context, cookieName string) string {
	if cands := candidates(c, cookieName); len(cands) > 0 {
		return cands[0]
	}
	return ""
}

func candidates(c *gin.Context, cookieName string) []string {
	var out []string
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		out = append(out, v)
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		if v := strings.TrimSpace(auth[7:]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// VerifyRequest verifies the request's credentials in order (cookie, then
// bearer header) and returns the first valid subject. A rejected cookie does
// not hide a valid bearer token. Errors other than ErrInvalidOrExpired stop
// the search.
func VerifyRequest(ctx context.Context, ver Verifier, c *gin.Context, cookieName string) (string, error) {
	cands := candidates(c, cookieName)
	if len(cands) == 0 {
		return ver.Verify(ctx, "")
	}
	var err error
	for _, raw := range cands {
		var sub string
		sub, err = ver.Verify(ctx, raw)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, tokens.ErrInvalidOrExpired) {
			return "", err
		}
	}
	return "", err
}

// RequireOperator aborts the request unless it carries a valid credential.
// Handlers behind it never run for unauthenticated callers.
func RequireOperator(ver Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := VerifyRequest(c.Request.Context(), ver, c, cookieName)
		switch {
		case err == nil:
			c.Set(SubjectKey, sub)
			c.Next()
		case errors.Is(err, tokens.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		case errors.Is(err, tokens.ErrInvalidOrExpired):
			logger.Debugf("rejected credential on %s %s: %v", c.Request.Method, c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		default:
			logger.Errorf("credential verification failed on %s %s: %v", c.Request.Method, c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}
