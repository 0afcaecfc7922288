package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/dto"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// TeamHandler handles team membership endpoints
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam creates a team with the caller as its admin
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team, true))
}

// JoinTeam allows a user to join via invite code
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	team, err := h.teamService.JoinTeam(c.Request.Context(), id, req.InviteCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team, false))
}

// GetMyTeam returns the caller's team and its members
func (h *TeamHandler) GetMyTeam(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetMyTeam(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(*team, id.Role))
}

// RegenerateInviteCode replaces the team's invite code (admin only)
func (h *TeamHandler) RegenerateInviteCode(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	team, err := h.teamService.RegenerateInviteCode(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team, true))
}

// RemoveMember removes a member from the team (admin only)
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	memberID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), id, memberID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
