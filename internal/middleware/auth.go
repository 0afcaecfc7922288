package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/team-todo-api/internal/constants"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/services"
)

const bearerPrefix = "Bearer "

// IdentityResolver turns credentials into a current identity.
type IdentityResolver interface {
	ParseToken(raw string) (identity.Identity, error)
	Resolve(ctx context.Context, userID uint64) (identity.Identity, error)
	RequireAdmin(ctx context.Context, userID uint64) (identity.Identity, error)
}

// RequireAuth authenticates the request by bearer token or session cookie and
// stores the caller's identity, as currently stored, in the context.
func RequireAuth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint64

		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, bearerPrefix) {
				apierrors.Unauthorized(c, "Malformed authorization header")
				c.Abort()
				return
			}
			claimed, err := resolver.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				apierrors.Unauthorized(c, "Invalid or expired token")
				c.Abort()
				return
			}
			userID = claimed.UserID
		} else {
			session := sessions.Default(c)
			id, ok := toUserID(session.Get(constants.ContextKeyUserID))
			if !ok {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			userID = id
		}

		id, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				log.WithError(err).WithField("user", userID).Error("failed to resolve identity")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, id.UserID)
		c.Set(constants.ContextKeyIdentity, id)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// GetIdentity retrieves the caller's identity from context
func GetIdentity(c *gin.Context) (identity.Identity, bool) {
	v, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

func toUserID(v any) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
