package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateTeam is returned when creating a team fails inside the transaction.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrAssignAdmin is returned when promoting the creator fails inside the transaction.
	ErrAssignAdmin = errors.New("team repository: assign team admin failed")
)

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a team and makes the creator its admin atomically.
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team, creatorID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		err := tx.Model(&models.User{}).
			Where("id = ?", creatorID).
			Updates(map[string]any{"team_id": team.ID, "role": models.RoleAdmin}).Error
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAssignAdmin, err)
		}

		return nil
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByInviteCode finds a team by invite code
func (r *GormTeamRepository) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

// AddMember moves a user into a team as a regular member
func (r *GormTeamRepository) AddMember(ctx context.Context, teamID, userID uint64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"team_id": teamID, "role": models.RoleMember}).Error
}

// RemoveMember detaches a user from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND team_id = ?", userID, teamID).
		Updates(map[string]any{"team_id": nil, "role": models.RoleMember}).Error
}
