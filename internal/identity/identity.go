// Package identity carries the authenticated caller from the HTTP layer into
// services as an explicit value.
package identity

import (
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/privacy"
)

// Identity is who is calling. TeamID is zero for users without a team.
type Identity struct {
	UserID uint64
	TeamID uint64
	Role   models.UserRole
}

// FromUser builds the identity of a freshly loaded user.
func FromUser(user *models.User) Identity {
	id := Identity{UserID: user.ID, Role: user.Role}
	if user.TeamID != nil {
		id.TeamID = *user.TeamID
	}
	return id
}

func (i Identity) HasTeam() bool {
	return i.TeamID != 0
}

// IsAdmin reports the role claimed by the identity. Admin-only routes must
// still confirm it against the stored user.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Viewer is the privacy view of the identity.
func (i Identity) Viewer() privacy.Viewer {
	return privacy.Viewer{UserID: i.UserID, TeamID: i.TeamID}
}
