package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
	"quicktask/internal/services"
)

const UserIDKey = "user_id"

// UserLookup resolves the user a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// tokenFromRequest reads "Authorization: Bearer <jwt>" and falls back to the
// ?token= query parameter used by export download links.
func tokenFromRequest(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(c.Query("token"))
}

func AuthMiddleware(authService services.AuthService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := authService.ParseToken(tokenStr)
		if err != nil {
			log.Printf("[auth][deny] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// токен мог пережить своего пользователя (in-memory хранилище, удаление)
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				log.Printf("[auth][deny] user %d from token not found", claims.UserID)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			log.Printf("[auth][err] load user %d: %v", claims.UserID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if user.Email != claims.Email {
			log.Printf("[auth][deny] token for %q presented for user %d", claims.Email, claims.UserID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
