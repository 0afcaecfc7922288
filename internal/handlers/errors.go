package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/team-todo-api/internal/constants"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/middleware"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// respondBindError reports a request body that failed to decode or validate,
// with the binder's message as details.
func respondBindError(c *gin.Context, err error) {
	apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
}

// respondServiceError maps service sentinel errors onto API errors. Anything
// unrecognised is logged and reported as a 500 without detail.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotTeamAdmin),
		errors.Is(err, services.ErrNoTeam),
		errors.Is(err, services.ErrNotTodoOwner):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrDisplayNameRequired),
		errors.Is(err, services.ErrContentRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidTeamName),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrSpreadsheetRequired),
		errors.Is(err, services.ErrSuggestTextRequired):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyInTeam):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Set OPENAI_API_KEY to enable suggestions.")
	case errors.Is(err, services.ErrAINoTodosSuggested):
		apierrors.Unprocessable(c, err.Error())

	case errors.Is(err, services.ErrExportFailed):
		log.WithError(err).Error("team export failed")
		apierrors.InternalError(c, services.ErrExportFailed.Error())
	case errors.Is(err, services.ErrBackupFailed):
		log.WithError(err).Error("team backup failed")
		apierrors.BadGateway(c, services.ErrBackupFailed.Error())

	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		apierrors.InternalError(c, "")
	}
}

// currentIdentity fetches the identity placed by RequireAuth, answering 401
// when it is missing.
func currentIdentity(c *gin.Context) (identity.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return id, ok
}
