package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session_token"

// Keep this small interface so tests can fake it easily.
type SessionVerifier interface {
	GetUserByToken(ctx context.Context, token string, now time.Time) (user.User, error)
}

type SessionAuth struct {
	sessions SessionVerifier
}

func NewSessionAuth(sessions SessionVerifier) *SessionAuth {
	return &SessionAuth{sessions: sessions}
}

const ctxUserKey = "auth.user"

// RequireAuth resolves the session cookie to a user or rejects the
// request. Missing cookies, unknown tokens, expired tokens and
// deactivated accounts all get the same answer.
func (m *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)

		if err != nil || token == "" {
			abortUnauthenticated(c)
			return
		}

		u, err := m.sessions.GetUserByToken(c.Request.Context(), token, time.Now().UTC())

		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(ctxUserKey, u)

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Not authenticated",
		},
	})
}

// UserFromContext returns the authenticated user stashed by RequireAuth.
func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}
