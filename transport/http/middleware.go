package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/service"
)

const sessionKey = "session"

// AuthMiddleware creates middleware that validates access tokens and puts
// the resolved session on the request context. Missing or malformed
// Authorization headers are a 401, never a 403.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		session, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				abortError(c, http.StatusUnauthorized, "token has expired")
			} else {
				abortError(c, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		c.Set(sessionKey, session)

		c.Next()
	}
}

// RequireRole gates a route group on the token's role. A valid token with
// the wrong role is a 403.
func RequireRole(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		if session == nil {
			abortError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}

		abortError(c, http.StatusForbidden, "insufficient role")
	}
}

func sessionFrom(c *gin.Context) *core.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, ok := v.(*core.Session)
	if !ok {
		return nil
	}
	return session
}
