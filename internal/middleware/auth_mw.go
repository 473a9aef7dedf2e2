package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"teacher_portal/internal/model"
	"teacher_portal/internal/repository"
	"teacher_portal/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthUserKey is the gin context key the gate stores the resolved user under
const AuthUserKey = "authUser"

// Permissions builds the authorization gate for a route: it extracts the
// bearer token, verifies it, loads the referenced user and requires every
// given permission to hold. An empty permission set means "authenticated
// only". The resolved user is set on the context for handlers that need it.
func Permissions(jwtUtil *utils.JWTUtil, users repository.UserRepository, required ...Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Missing or Invalid Token"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := jwtUtil.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Missing or Invalid Token"})
			return
		}
		userID, err := strconv.Atoi(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
			return
		}

		for _, perm := range required {
			if !perm(user) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Permission Denied"})
				return
			}
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// AuthUser returns the user resolved by the gate, if any
func AuthUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}
