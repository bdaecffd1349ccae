package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/petshop/internal/server/http/middleware"
	"github.com/polkiloo/petshop/internal/session"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentSession returns the visitor session attached by middleware.Identify.
func CurrentSession(c *gin.Context) *session.Session {
	val, ok := c.Get(middleware.SessionContextKey)
	if !ok {
		return nil
	}
	s, _ := val.(*session.Session)
	return s
}

// requireSession aborts with 500 when the identify middleware did not run.
func requireSession(c *gin.Context) (*session.Session, bool) {
	s := CurrentSession(c)
	if s == nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
