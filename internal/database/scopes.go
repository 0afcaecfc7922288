package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveTodos restricts a todo query to incomplete rows of a team
func ActiveTodos(teamID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("todos.team_id = ? AND todos.is_completed = ?", teamID, false)
	}
}
