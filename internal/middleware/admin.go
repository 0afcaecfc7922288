package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/team-todo-api/internal/constants"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// RequireAdmin rejects callers who do not administer a team. The role is
// read again from the user record rather than trusted from the token.
// Must run after RequireAuth.
func RequireAdmin(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		admin, err := resolver.RequireAdmin(c.Request.Context(), id.UserID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrNotTeamAdmin), errors.Is(err, services.ErrNoTeam):
			log.WithField("user", id.UserID).Warn("admin route refused")
			apierrors.Forbidden(c, "Team admin role required")
			c.Abort()
			return
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		default:
			log.WithError(err).WithField("user", id.UserID).Error("failed to check admin role")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyIdentity, admin)
		c.Next()
	}
}
