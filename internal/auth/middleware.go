package auth

import (
	"errors"
	"net/http"
	"strings"

	"fitclass/internal/access"
	"fitclass/internal/api"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: msg, Code: "UNAUTHENTICATED"})
}

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				unauthorized(c, "Token expired")
			default:
				unauthorized(c, "Invalid or malformed token")
			}
			return
		}

		if claims.TokenType != tokenTypeAccess {
			unauthorized(c, "Access token required")
			return
		}

		roles, err := access.ParseRoles(claims.Roles)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(actorKey, access.Actor{ID: claims.UserID, Roles: roles})
		c.Next()
	}
}

// RequireRole lets the request through when the actor holds any of roles.
func RequireRole(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			unauthorized(c, "User role not found")
			return
		}

		for _, r := range roles {
			if actor.Roles.Has(r) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions", Code: "PERMISSION_DENIED"})
	}
}

func GetActor(c *gin.Context) (access.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return access.Actor{}, false
	}

	actor, ok := v.(access.Actor)
	return actor, ok
}

// SetActor is used by tests that bypass token validation.
func SetActor(c *gin.Context, actor access.Actor) {
	c.Set(actorKey, actor)
}

// MustActor returns the request actor or writes a 401.
func MustActor(c *gin.Context) (access.Actor, bool) {
	actor, ok := GetActor(c)
	if !ok {
		unauthorized(c, "Authentication required")
	}
	return actor, ok
}
