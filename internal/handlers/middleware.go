package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/identity"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// AuthMiddleware resolves the bearer token to a user and attaches it to the
// request context. A missing token is allowed: the request proceeds
// anonymously and submissions simply skip remote persistence. A token that
// is present but cannot be verified is rejected.
func AuthMiddleware(gateway identity.Gateway, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		user, err := gateway.UserFromToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Rejected invalid bearer token",
				"path", c.Request.URL.Path,
				"remote_addr", c.ClientIP(),
				"error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}
		if user != nil {
			c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), user))
		}

		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
