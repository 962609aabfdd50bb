package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoker auth.Revoker
	prom    *observability.Prom
}

func NewAuthMiddleware(jwt TokenVerifier, revoker auth.Revoker, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, revoker: revoker, prom: prom}
}

// RequireAuth rejects requests without a valid bearer token. Credential
// failures are reported as 400 auth_error with a message per cause.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, present := c.Request.Header["Authorization"]
		if !present || len(authHeader) == 0 {
			m.reject(c, "missing", "Token not found")
			return
		}

		scheme, raw, ok := strings.Cut(strings.TrimSpace(authHeader[0]), " ")
		raw = strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			m.reject(c, "invalid", "Invalid token")
			return
		}

		ident, err := m.jwt.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				m.reject(c, "expired", "Token expired")
				return
			}
			m.reject(c, "invalid", "Invalid token")
			return
		}

		if m.revoker != nil {
			revoked, err := m.revoker.IsRevoked(c.Request.Context(), ident.TokenID)
			if err != nil {
				slog.Default().ErrorContext(c.Request.Context(), "revocation lookup failed", "err", err)
				abortJSON(c, http.StatusInternalServerError, "internal_error", "Could not verify token")
				return
			}
			if revoked {
				m.reject(c, "revoked", "Token revoked")
				return
			}
		}

		// Stash useful bits of identity on the context
		c.Set(CtxUserID, ident.UserID)
		c.Set(CtxIdentity, ident)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), ident.UserID))

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, reason, message string) {
	if m.prom != nil {
		m.prom.AuthFailures.WithLabelValues(reason).Inc()
	}
	abortJSON(c, http.StatusBadRequest, "auth_error", message)
}

func abortJSON(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if s, ok := reqID.(string); ok && s != "" {
		body["requestId"] = s
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	ident, ok := v.(auth.Identity)
	return ident, ok
}
