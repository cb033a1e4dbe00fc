package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	PrincipalHeader = "X-Principal"
	principalKey    = "principal"
)

// AuthMiddleware requires the caller's principal in the X-Principal header and
// stores it in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := strings.TrimSpace(c.GetHeader(PrincipalHeader))
		if principal == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "principal is required in 'X-Principal' header"})
			return
		}
		logrus.WithField("principal", principal).Debug("request authenticated")
		c.Set(principalKey, principal)
		c.Next()
	}
}

func Principal(c *gin.Context) string {
	return c.GetString(principalKey)
}
