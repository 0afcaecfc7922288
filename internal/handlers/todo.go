package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/dto"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/services"
	"github.com/yukikurage/team-todo-api/internal/utils"
)

type TodoHandler struct {
	todoService *services.TodoService
	aiService   *services.AIService
}

func NewTodoHandler(todoService *services.TodoService, aiService *services.AIService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		aiService:   aiService,
	}
}

// CreateTodo creates a todo in the caller's team
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	type CreateTodoRequest struct {
		Content     string `json:"content" binding:"required"`
		Priority    *int   `json:"priority"`
		IsSecret    bool   `json:"is_secret"`
		IsCompleted bool   `json:"is_completed"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	todo, err := h.todoService.CreateTodo(c.Request.Context(), id, services.CreateTodoInput{
		Content:     req.Content,
		Priority:    req.Priority,
		IsSecret:    req.IsSecret,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// ListMyTodos returns every todo the caller owns, secret ones included
func (h *TodoHandler) ListMyTodos(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	todos, err := h.todoService.ListMyTodos(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, nil))
}

// ListTeamTodos returns a page of the team's shared todos, highest priority
// first and newest first within a priority
func (h *TodoHandler) ListTeamTodos(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	todos, total, err := h.todoService.ListTeamTodos(c.Request.Context(), id, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, &utils.PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// GetTodo returns a single todo visible to the caller
func (h *TodoHandler) GetTodo(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(c.Request.Context(), id, todoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a partial update to a todo the caller owns
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	type UpdateTodoRequest struct {
		Content     *string `json:"content"`
		Priority    *int    `json:"priority"`
		IsSecret    *bool   `json:"is_secret"`
		IsCompleted *bool   `json:"is_completed"`
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	todo, err := h.todoService.UpdateTodo(c.Request.Context(), id, todoID, services.UpdateTodoInput{
		Content:     req.Content,
		Priority:    req.Priority,
		IsSecret:    req.IsSecret,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo deletes a todo the caller owns
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), id, todoID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo deleted successfully",
	})
}

// SuggestTodos asks the AI service to break free text into todos. Nothing is
// saved; the client creates the ones it keeps.
func (h *TodoHandler) SuggestTodos(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}

	type SuggestRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	suggestions, err := h.aiService.SuggestTodos(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuggestionListResponse{Suggestions: suggestions})
}

func todoIDParam(c *gin.Context) (uint64, bool) {
	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return 0, false
	}
	return todoID, true
}
