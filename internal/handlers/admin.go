package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/export"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// AdminHandler serves team administration endpoints. Routes are expected to
// sit behind middleware.RequireAdmin.
type AdminHandler struct {
	adminService     *services.AdminService
	dashboardService *services.DashboardService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService, dashboardService *services.DashboardService) *AdminHandler {
	return &AdminHandler{
		adminService:     adminService,
		dashboardService: dashboardService,
	}
}

// ExportCSV downloads every team todo as CSV with secret content redacted
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	body, err := h.adminService.ExportCSV(c.Request.Context(), id.TeamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(id.TeamID)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// Backup writes the team's todos to a spreadsheet
func (h *AdminHandler) Backup(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	type BackupRequest struct {
		SpreadsheetID string `json:"spreadsheet_id" binding:"required"`
	}

	var req BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	count, err := h.adminService.Backup(c.Request.Context(), id.TeamID, req.SpreadsheetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// Dashboard returns the team summary. Metrics that could not be computed are
// listed under "degraded"; the response is still 200.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.dashboardService.Compute(c.Request.Context(), id.TeamID))
}
