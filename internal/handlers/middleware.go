package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

// RequestID propagates or assigns X-Request-ID and stores it on the request
// context for service logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.RequestIDKey, id))
		c.Next()
	}
}

// AuthMiddleware resolves the bearer token into a session. Requests without
// a valid token are rejected.
type AuthMiddleware struct {
	BaseHandler
	auth services.AuthService
}

func NewAuthMiddleware(auth services.AuthService, base BaseHandler) *AuthMiddleware {
	return &AuthMiddleware{BaseHandler: base, auth: auth}
}

func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			m.RespondWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Missing bearer token", nil)
			return
		}

		session, err := m.auth.ParseToken(strings.TrimSpace(token))
		if err != nil {
			m.handleServiceError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionOf(c).IsTeacher() {
			m.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Teacher session required", nil)
			return
		}
		c.Next()
	}
}

// RequireStudentSelf lets a student through only for their own :id. When
// allowTeacher is set a teacher session also passes.
func (m *AuthMiddleware) RequireStudentSelf(allowTeacher bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionOf(c)
		if session.IsTeacher() {
			if allowTeacher {
				c.Next()
				return
			}
			m.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Only the student may do this", nil)
			return
		}
		if session == nil || session.StudentID != strings.TrimSpace(c.Param("id")) {
			m.handleServiceError(c, services.NewPermissionError(session.Actor(), c.Param("id"), "student", c.Request.Method, "session is bound to another student"))
			return
		}
		c.Next()
	}
}

func sessionOf(c *gin.Context) *services.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(*services.Session); ok {
			return session
		}
	}
	return nil
}

func actorOf(c *gin.Context) string {
	return sessionOf(c).Actor()
}
