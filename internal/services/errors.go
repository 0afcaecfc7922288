package services

import "errors"

// Authorization failures. Handlers answer these with 403.
var (
	ErrForbidden    = errors.New("access denied")
	ErrNotTeamAdmin = errors.New("only team admins can perform this action")
	ErrNoTeam       = errors.New("user does not belong to a team")
)

// Lookups that found nothing, or nothing the caller may see. Handlers answer
// these with 404.
var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrTeamNotFound = errors.New("team not found")
	ErrUserNotFound = errors.New("user not found")
)

// Integration failures.
var (
	ErrExportFailed = errors.New("failed to export team todos")
	ErrBackupFailed = errors.New("failed to back up team todos")
)
