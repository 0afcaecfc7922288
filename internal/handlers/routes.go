package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/middleware"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Auth  *AuthHandler
	Team  *TeamHandler
	Todo  *TodoHandler
	Admin *AdminHandler
}

// RegisterRoutes mounts the API on r. Sessions middleware must already be
// installed.
func RegisterRoutes(r *gin.Engine, h Handlers, resolver middleware.IdentityResolver) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(resolver), h.Auth.GetCurrentUser)
	}

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(resolver))

	teams := authed.Group("/teams")
	{
		teams.POST("", h.Team.CreateTeam)
		teams.POST("/join", h.Team.JoinTeam)
		teams.GET("/me", h.Team.GetMyTeam)

		teamAdmin := teams.Group("/me")
		teamAdmin.Use(middleware.RequireAdmin(resolver))
		teamAdmin.POST("/regenerate-code", h.Team.RegenerateInviteCode)
		teamAdmin.DELETE("/members/:user_id", h.Team.RemoveMember)
	}

	todos := authed.Group("/todos")
	{
		todos.POST("", h.Todo.CreateTodo)
		todos.GET("/mine", h.Todo.ListMyTodos)
		todos.GET("/team", h.Todo.ListTeamTodos)
		todos.POST("/suggest", h.Todo.SuggestTodos)
		todos.GET("/:id", h.Todo.GetTodo)
		todos.PATCH("/:id", h.Todo.UpdateTodo)
		todos.DELETE("/:id", h.Todo.DeleteTodo)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin(resolver))
	{
		admin.GET("/export-csv", h.Admin.ExportCSV)
		admin.POST("/backup", h.Admin.Backup)
		admin.GET("/dashboard", h.Admin.Dashboard)
	}
}
