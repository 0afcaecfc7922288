package dto

import (
	"github.com/yukikurage/team-todo-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// TeamMemberDTO represents a member of a team
type TeamMemberDTO struct {
	ID          uint64          `json:"id"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
}

// TeamDetailDTO represents a team with its members
type TeamDetailDTO struct {
	TeamDTO
	Members  []TeamMemberDTO `json:"members"`
	YourRole models.UserRole `json:"your_role"`
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team, includeInviteCode bool) TeamDTO {
	dto := TeamDTO{
		ID:   team.ID,
		Name: team.Name,
	}
	if includeInviteCode {
		dto.InviteCode = team.InviteCode
	}
	return dto
}

// ToTeamDetailDTO converts a team with preloaded members. Only admins see
// the invite code.
func ToTeamDetailDTO(team models.Team, yourRole models.UserRole) TeamDetailDTO {
	members := make([]TeamMemberDTO, len(team.Members))
	for i, m := range team.Members {
		members[i] = TeamMemberDTO{ID: m.ID, DisplayName: m.DisplayName, Role: m.Role}
	}
	return TeamDetailDTO{
		TeamDTO:  ToTeamDTO(team, yourRole == models.RoleAdmin),
		Members:  members,
		YourRole: yourRole,
	}
}
