package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
)

// IdentityKey is the gin context key holding the caller's auth.Identity.
const IdentityKey = "identity"

// Identity returns Gin middleware that authenticates requests via a bearer
// JWT and stores the resulting auth.Identity in the request context.
//
// When enforcement is disabled, requests without a token proceed as an
// admin identity under the "admin" project; a token, if present, is still
// parsed so project scoping works against real identities.
func Identity(secret string, enforced bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		if token == "" {
			if !enforced {
				c.Set(IdentityKey, auth.Identity{
					ProjectID: "admin",
					Roles:     []string{auth.RoleAdmin},
				})
				c.Next()

				return
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")

			return
		}

		ident, err := auth.ParseToken(secret, token)
		if err != nil {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("authentication failed: invalid token")

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid token")

			return
		}

		c.Set(IdentityKey, ident)
		c.Next()
	}
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}
