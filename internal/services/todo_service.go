package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/triggers"
	"gorm.io/gorm"
)

var (
	ErrContentRequired = errors.New("content is required")
	ErrInvalidPriority = errors.New("priority must be between 1 and 5")
	ErrNotTodoOwner    = errors.New("only the owner or a team admin can modify this todo")
)

// TodoService handles todo business logic
type TodoService struct {
	todoRepo  repository.TodoRepository
	publisher triggers.Publisher
	now       func() time.Time
}

// NewTodoService creates a new TodoService. Every write is announced on
// publisher.
func NewTodoService(todoRepo repository.TodoRepository, publisher triggers.Publisher) *TodoService {
	return &TodoService{
		todoRepo:  todoRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Content     string
	Priority    *int
	IsSecret    bool
	IsCompleted bool
}

// UpdateTodoInput holds the fields to change; nil fields are left alone
type UpdateTodoInput struct {
	Content     *string
	Priority    *int
	IsSecret    *bool
	IsCompleted *bool
}

// CreateTodo creates a todo owned by the caller in the caller's team
func (s *TodoService) CreateTodo(ctx context.Context, id identity.Identity, input CreateTodoInput) (*models.Todo, error) {
	if !id.HasTeam() {
		return nil, ErrNoTeam
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrContentRequired
	}

	priority := constants.DefaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}
	if !validPriority(priority) {
		return nil, ErrInvalidPriority
	}

	todo := &models.Todo{
		TeamID:   id.TeamID,
		OwnerID:  id.UserID,
		Content:  content,
		Priority: priority,
		IsSecret: input.IsSecret,
	}
	todo.SetCompleted(input.IsCompleted, s.now())

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.publish(ctx, triggers.TodoMutation(triggers.OpCreate, nil, todo))
	return todo, nil
}

// ListMyTodos returns every todo the caller owns, secret ones included
func (s *TodoService) ListMyTodos(ctx context.Context, id identity.Identity) ([]models.Todo, error) {
	todos, err := s.todoRepo.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// ListTeamTodos returns the caller's team todos that are not secret
func (s *TodoService) ListTeamTodos(ctx context.Context, id identity.Identity, page, pageSize int) ([]models.Todo, int64, error) {
	if !id.HasTeam() {
		return nil, 0, ErrNoTeam
	}

	todos, total, err := s.todoRepo.ListTeamVisible(ctx, repository.TeamTodoFilter{
		TeamID:   id.TeamID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list team todos: %w", err)
	}
	return todos, total, nil
}

// GetTodo returns a todo the caller may see. Todos hidden from the caller
// are reported as missing.
func (s *TodoService) GetTodo(ctx context.Context, id identity.Identity, todoID uint64) (*models.Todo, error) {
	todo, err := s.findTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if !id.Viewer().CanSee(*todo) {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

// UpdateTodo applies a partial update to a todo the caller may edit
func (s *TodoService) UpdateTodo(ctx context.Context, id identity.Identity, todoID uint64, input UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.findEditableTodo(ctx, id, todoID)
	if err != nil {
		return nil, err
	}
	before := *todo

	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, ErrContentRequired
		}
		todo.Content = content
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		todo.Priority = *input.Priority
	}
	if input.IsSecret != nil {
		todo.IsSecret = *input.IsSecret
	}
	if input.IsCompleted != nil {
		todo.SetCompleted(*input.IsCompleted, s.now())
	}

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.publish(ctx, triggers.TodoMutation(triggers.OpUpdate, &before, todo))
	return todo, nil
}

// DeleteTodo soft deletes a todo the caller may edit
func (s *TodoService) DeleteTodo(ctx context.Context, id identity.Identity, todoID uint64) error {
	todo, err := s.findEditableTodo(ctx, id, todoID)
	if err != nil {
		return err
	}

	if err := s.todoRepo.Delete(ctx, todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.publish(ctx, triggers.TodoMutation(triggers.OpDelete, todo, nil))
	return nil
}

func (s *TodoService) findTodo(ctx context.Context, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// findEditableTodo loads a todo the caller may change: their own, or, for a
// team admin, a teammate's todo they can see. Secret todos of others stay
// not-found even for admins.
func (s *TodoService) findEditableTodo(ctx context.Context, id identity.Identity, todoID uint64) (*models.Todo, error) {
	todo, err := s.findTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo.OwnerID == id.UserID {
		return todo, nil
	}
	if !id.Viewer().CanSee(*todo) {
		return nil, ErrTodoNotFound
	}
	if id.IsAdmin() && todo.TeamID == id.TeamID {
		return todo, nil
	}
	return nil, ErrNotTodoOwner
}

// publish hands a mutation to the bus. The write has already committed, so
// a failure only delays the derived stats.
func (s *TodoService) publish(ctx context.Context, m triggers.Mutation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, m); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"key": m.Key,
			"op":  m.Op,
		}).Warn("failed to publish todo mutation")
	}
}

func validPriority(p int) bool {
	return p >= constants.MinPriority && p <= constants.MaxPriority
}
