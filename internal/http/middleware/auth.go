package middleware

import (
	"net/http"
	"strings"

	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// SubjectKey holds the token subject in the gin context.
const SubjectKey = "subject"

// BearerAuth requires a valid "Authorization: Bearer <jwt>" header.
// A nil issuer disables the check.
func BearerAuth(issuer *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		sub, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(SubjectKey, sub)
		c.Next()
	}
}
