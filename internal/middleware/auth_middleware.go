package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "userID"
	ActorKey  = "actor"
)

// JWTAuthMiddleware checks the bearer token and stores the user id (uint)
// under UserIDKey.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return TokenAuth(auth.NewTokenIssuer(config.AuthConfig{JWTSecret: secret}))
}

func TokenAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		userID, err := issuer.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserLoader fetches the caller with their role.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// LoadActor resolves the authenticated user into a model.Actor. It must run
// after TokenAuth.
func LoadActor(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := c.Get(UserIDKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		user, err := users.GetByID(c.Request.Context(), id.(uint))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.Set(ActorKey, user.Actor())
		c.Next()
	}
}

// RequireRole lets only the named roles through.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !slices.Contains(roles, actor.RoleName) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
