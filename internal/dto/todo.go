package dto

import (
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/services"
	"github.com/yukikurage/team-todo-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	TeamID      *uint64         `json:"team_id"`
	Role        models.UserRole `json:"role"`
}

// OwnerDTO is the public face of a todo's owner
type OwnerDTO struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"display_name"`
}

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64     `json:"id"`
	TeamID      uint64     `json:"team_id"`
	OwnerID     uint64     `json:"owner_id"`
	Content     string     `json:"content"`
	Priority    int        `json:"priority"`
	IsSecret    bool       `json:"is_secret"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *OwnerDTO  `json:"owner,omitempty"`
}

// TodoListResponse represents a list of todos, paginated for team listings
type TodoListResponse struct {
	Todos      []TodoDTO                 `json:"todos"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// SuggestionListResponse wraps AI suggestions
type SuggestionListResponse struct {
	Suggestions []services.SuggestedTodo `json:"suggestions"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TeamID:      user.TeamID,
		Role:        user.Role,
	}
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          todo.ID,
		TeamID:      todo.TeamID,
		OwnerID:     todo.OwnerID,
		Content:     todo.Content,
		Priority:    todo.Priority,
		IsSecret:    todo.IsSecret,
		IsCompleted: todo.IsCompleted,
		CompletedAt: todo.CompletedAt,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}

	// Include owner if preloaded
	if todo.Owner.ID != 0 {
		dto.Owner = &OwnerDTO{ID: todo.Owner.ID, DisplayName: todo.Owner.DisplayName}
	}

	return dto
}

// ToTodoListResponse converts todos to a response; pagination is optional
func ToTodoListResponse(todos []models.Todo, pagination *utils.PaginationResponse) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}
	return TodoListResponse{Todos: items, Pagination: pagination}
}
