package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/shopbackoffice/internal/admin/application"
	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
)

// sessionContextKey is where AuthRequired parks the resolved session.
const sessionContextKey = "admin_session"

// AuthRequired verifies the bearer token and loads its session before any
// handler runs. Requests without a live session never reach the data layer.
func AuthRequired(app *application.AdminApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		session, err := app.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidToken),
				errors.Is(err, domain.ErrSessionNotFound),
				errors.Is(err, domain.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			default:
				logger.Error(c.Request.Context(), "authentication failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequirePermission gates a route on one permission from the session
// snapshot. It must run after AuthRequired.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		if !session.Allows(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session placed by AuthRequired.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
