package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin records a successful login
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// ListByTeam lists the members of a team
func (r *GormUserRepository) ListByTeam(ctx context.Context, teamID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("display_name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListAdmins lists the admins of a team
func (r *GormUserRepository) ListAdmins(ctx context.Context, teamID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountByTeam counts the members of a team
func (r *GormUserRepository) CountByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return count, err
}

// CountActiveSince counts members of a team who logged in since the given time
func (r *GormUserRepository) CountActiveSince(ctx context.Context, teamID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("team_id = ? AND last_login_at >= ?", teamID, since).
		Count(&count).Error
	return count, err
}
