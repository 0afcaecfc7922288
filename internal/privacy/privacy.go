// Package privacy holds the visibility rules for todos.
//
// There are three rules and they are intentionally kept apart:
//
//   - own todos: everything the viewer owns, secret or not
//   - team todos: rows of the team with is_secret = false, filtered in SQL
//   - admin export: every team row, with secret content replaced in SQL
//
// Team-scoped queries must be built from the scopes in this package so the
// secrecy condition is part of the statement sent to the database.
package privacy

import (
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// Viewer is the identity a read is performed for.
type Viewer struct {
	UserID uint64
	TeamID uint64
}

// CanSee reports whether the viewer may read the todo. Owners always can;
// teammates only when the todo is not secret.
func (v Viewer) CanSee(todo models.Todo) bool {
	if todo.OwnerID == v.UserID {
		return true
	}
	return v.TeamID != 0 && todo.TeamID == v.TeamID && !todo.IsSecret
}

// OwnedBy restricts a todo query to the owner's rows. No secrecy filter.
func OwnedBy(ownerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("todos.owner_id = ?", ownerID)
	}
}

// TeamVisible restricts a todo query to the public rows of a team.
func TeamVisible(teamID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("todos.team_id = ? AND todos.is_secret = ?", teamID, false)
	}
}

// RedactedColumns selects the export columns of todos with secret content
// already replaced by the redaction marker.
func RedactedColumns(db *gorm.DB) *gorm.DB {
	return db.Select(
		"todos.id, todos.team_id, todos.owner_id, todos.priority, todos.is_secret, "+
			"todos.is_completed, todos.created_at, todos.completed_at, "+
			"CASE WHEN todos.is_secret THEN ? ELSE todos.content END AS content, "+
			"users.display_name AS owner_name",
		constants.RedactedContent,
	)
}

// Label returns the privacy tag shown in exports.
func Label(isSecret bool) string {
	if isSecret {
		return constants.PrivacyPersonal
	}
	return constants.PrivacyTeam
}
