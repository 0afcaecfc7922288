package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidTeamName            = errors.New("team name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyInTeam              = errors.New("user already belongs to a team")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the team")
	ErrTeamMemberNotFound         = errors.New("team member not found")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// CreateTeam creates a team and makes the caller its admin.
func (s *TeamService) CreateTeam(ctx context.Context, id identity.Identity, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}
	if err := s.ensureTeamless(ctx, id.UserID); err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	team := &models.Team{
		Name:       name,
		InviteCode: inviteCode,
	}
	if err := s.teamRepo.Create(ctx, team, id.UserID); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// JoinTeam adds the caller to the team owning the invite code.
func (s *TeamService) JoinTeam(ctx context.Context, id identity.Identity, inviteCode string) (*models.Team, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, ErrInvalidInviteCode
	}
	if err := s.ensureTeamless(ctx, id.UserID); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if err := s.teamRepo.AddMember(ctx, team.ID, id.UserID); err != nil {
		return nil, fmt.Errorf("failed to join team: %w", err)
	}

	return team, nil
}

// GetMyTeam returns the caller's team with its members.
func (s *TeamService) GetMyTeam(ctx context.Context, id identity.Identity) (*models.Team, error) {
	if !id.HasTeam() {
		return nil, ErrNoTeam
	}

	team, err := s.teamRepo.FindByID(ctx, id.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.userRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	team.Members = members

	return team, nil
}

// RegenerateInviteCode replaces the invite code of the admin's team.
func (s *TeamService) RegenerateInviteCode(ctx context.Context, admin identity.Identity) (*models.Team, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotTeamAdmin
	}

	team, err := s.teamRepo.FindByID(ctx, admin.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	newCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}
	team.InviteCode = newCode

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// RemoveMember detaches a member from the admin's team.
func (s *TeamService) RemoveMember(ctx context.Context, admin identity.Identity, memberID uint64) error {
	if !admin.IsAdmin() {
		return ErrNotTeamAdmin
	}
	if memberID == admin.UserID {
		return ErrCannotRemoveYourself
	}

	member, err := s.userRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if member.TeamID == nil || *member.TeamID != admin.TeamID {
		return ErrTeamMemberNotFound
	}

	if err := s.teamRepo.RemoveMember(ctx, admin.TeamID, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *TeamService) ensureTeamless(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.TeamID != nil {
		return ErrAlreadyInTeam
	}
	return nil
}
