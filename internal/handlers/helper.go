package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/identity"
)

// ParseStringIDParam reads a path parameter and rejects blank values. A
// written 400 response means the caller must return immediately.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseIntQuery reads an optional integer query parameter, falling back to
// the default on absence or garbage.
func ParseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// currentUser returns the signed-in user, or nil for anonymous requests.
func currentUser(c *gin.Context) *identity.User {
	return identity.FromContext(c.Request.Context())
}

// currentUserID returns the signed-in user's ID or "" when anonymous.
func currentUserID(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return ""
}

// requireUser writes a 401 and returns nil when the request is anonymous.
func requireUser(c *gin.Context) *identity.User {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}
	return user
}
