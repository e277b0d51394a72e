package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quicktask/internal/middleware"
	"quicktask/internal/repositories"
	"quicktask/internal/services"
)

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps service and repository errors to HTTP statuses.
func respondError(c *gin.Context, tag string, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, services.ErrInvalidTask),
		errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrInvalidRange):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, services.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repositories.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrEmailTaken):
		status, msg = http.StatusConflict, "email already registered"
	}

	log.Printf("%s[err] status=%d request_id=%s: %v", tag, status, c.GetString(middleware.RequestIDKey), err)
	c.JSON(status, gin.H{"error": msg})
}
