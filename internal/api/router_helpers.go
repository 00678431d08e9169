package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/middleware"
	"github.com/metalbroker/metalbroker/internal/models"
)

// getIdentity extracts the authenticated identity from the Gin context. It
// responds 401 and returns false when the identity middleware did not run.
func getIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(middleware.IdentityKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing identity")

		return auth.Identity{}, false
	}

	ident, ok := v.(auth.Identity)
	if !ok || ident.ProjectID == "" {
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing identity")

		return auth.Identity{}, false
	}

	return ident, true
}

// parseListFilter builds a ListFilter from the request's query string.
// Unknown status tokens are a client error.
func parseListFilter(c *gin.Context) (models.ListFilter, error) {
	filter := models.ListFilter{
		ResourceType: c.Query("resource_type"),
		ResourceUUID: c.Query("resource_uuid"),
		ProjectID:    c.Query("project_id"),
		LesseeID:     c.Query("lessee_id"),
		OwnerID:      c.Query("owner_id"),
	}

	if raw := c.Query("status"); raw != "" {
		for _, tok := range strings.Split(raw, ",") {
			status, ok := models.ParseStatus(strings.TrimSpace(tok))
			if !ok {
				return models.ListFilter{}, fmt.Errorf("unknown status %q", tok)
			}

			filter.Statuses = append(filter.Statuses, status)
		}
	}

	return filter, nil
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("id exceeds maximum length of 255")
	}
	return nil
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if v, exists := c.Get(middleware.IdentityKey); exists {
			if ident, ok := v.(auth.Identity); ok {
				fields["project_id"] = ident.ProjectID
			}
		}
		log.WithFields(fields).Info("request")
	}
}
