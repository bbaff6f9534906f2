package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/transport/http/response"
)

const ContextStudentIDKey = "student_id"

// unauthorizedMessage is the only message a rejected token ever gets.
const unauthorizedMessage = "could not validate credentials"

// TokenVerifier is satisfied by app.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

func AuthJWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			Unauthorized(c, unauthorizedMessage)
			return
		}

		studentID, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			Unauthorized(c, unauthorizedMessage)
			return
		}

		c.Set(ContextStudentIDKey, studentID)
		c.Next()
	}
}

// Unauthorized aborts with 401 and a Bearer challenge.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, message)
	c.Abort()
}

func StudentID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextStudentIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
