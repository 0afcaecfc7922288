package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/privacy"
	"github.com/yukikurage/team-todo-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(todo).Error
}

// FindByID finds a todo by ID
func (r *GormTodoRepository) FindByID(ctx context.Context, id uint64) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.WithContext(ctx).First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update saves all columns of a todo
func (r *GormTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(todo).Error
}

// Delete soft deletes a todo
func (r *GormTodoRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Todo{}, id).Error
}

// ListByOwner lists every todo owned by the user
func (r *GormTodoRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.WithContext(ctx).
		Scopes(privacy.OwnedBy(ownerID)).
		Order("todos.priority DESC").
		Order("todos.created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// ListTeamVisible lists the non-secret todos of a team with pagination
func (r *GormTodoRepository) ListTeamVisible(ctx context.Context, filter TeamTodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	query := r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Scopes(privacy.TeamVisible(filter.TeamID)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("todos.priority DESC").
		Order("todos.created_at DESC").
		Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize))).
		Preload("Owner").
		Find(&todos).Error
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// ListTeamExport lists every todo of a team, newest first, with secret
// content replaced in the query itself
func (r *GormTodoRepository) ListTeamExport(ctx context.Context, teamID uint64) ([]ExportRow, error) {
	var rows []ExportRow
	err := r.db.WithContext(ctx).
		Table("todos").
		Scopes(privacy.RedactedColumns).
		Joins("LEFT JOIN users ON users.id = todos.owner_id").
		Where("todos.team_id = ? AND todos.deleted_at IS NULL", teamID).
		Order("todos.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveByMember lists a member's incomplete todos in a team
func (r *GormTodoRepository) ListActiveByMember(ctx context.Context, teamID, ownerID uint64) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.WithContext(ctx).
		Scopes(database.ActiveTodos(teamID)).
		Where("todos.owner_id = ?", ownerID).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// CountByTeam counts all todos of a team
func (r *GormTodoRepository) CountByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("todos.team_id = ?", teamID).
		Count(&count).Error
	return count, err
}

// CountCompletedByTeam counts the completed todos of a team
func (r *GormTodoRepository) CountCompletedByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("todos.team_id = ? AND todos.is_completed = ?", teamID, true).
		Count(&count).Error
	return count, err
}

// CountCreatedAfter counts todos of a team created after t
func (r *GormTodoRepository) CountCreatedAfter(ctx context.Context, teamID uint64, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("todos.team_id = ? AND todos.created_at > ?", teamID, t).
		Count(&count).Error
	return count, err
}

// CountUrgentOpen counts incomplete urgent todos of a team
func (r *GormTodoRepository) CountUrgentOpen(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Scopes(database.ActiveTodos(teamID)).
		Where("todos.priority = ?", constants.UrgentPriority).
		Count(&count).Error
	return count, err
}

// ActivePriorities returns the priorities of up to limit incomplete todos
func (r *GormTodoRepository) ActivePriorities(ctx context.Context, teamID uint64, limit int) ([]int, error) {
	var priorities []int
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Scopes(database.ActiveTodos(teamID)).
		Limit(limit).
		Pluck("priority", &priorities).Error
	if err != nil {
		return nil, err
	}
	return priorities, nil
}
