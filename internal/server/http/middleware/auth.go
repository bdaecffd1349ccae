package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/petshop/internal/pkg/auth"
	"github.com/polkiloo/petshop/internal/session"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// SessionContextKey is a gin context key for the visitor session.
	SessionContextKey = "session"

	authCookieName    = "petshop_token"
	sessionCookieName = "petshop_session"
)

// Identifier resolves visitor sessions and the users behind auth tokens.
type Identifier interface {
	Session(ctx context.Context, id string) *session.Session
	ParseToken(token string) (int64, error)
	Identify(ctx context.Context, s *session.Session, userID int64) error
}

// Identify attaches the visitor session and, when the request carries a
// valid token, the authenticated user. A session whose user differs from
// the token is signed in again, which syncs its cart; a request without a
// valid token turns the session into a guest.
func Identify(identifier Identifier, logger *slog.Logger, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sessionID, _ := c.Cookie(sessionCookieName)
		s := identifier.Session(ctx, sessionID)
		if s.ID != sessionID {
			c.SetCookie(sessionCookieName, s.ID, int(sessionTTL/time.Second), "/", "", false, true)
		}
		c.Set(SessionContextKey, s)

		var userID int64
		if token := extractToken(c); token != "" {
			id, err := identifier.ParseToken(token)
			switch {
			case err == nil:
				userID = id
			case errors.Is(err, pkgAuth.ErrInvalidToken):
			default:
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		if userID != s.UserID() {
			if err := identifier.Identify(ctx, s, userID); err != nil {
				logger.Warn("session identify failed",
					slog.String("session", s.ID),
					slog.Int64("user_id", userID),
					slog.String("error", err.Error()),
				)
			}
		}
		if userID != 0 {
			c.Set(UserIDContextKey, userID)
		}
		c.Next()
	}
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := c.Get(UserIDContextKey); !ok || id.(int64) == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearAuthCookie expires the auth token cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
}
