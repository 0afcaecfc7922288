package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/services"
	"github.com/yukikurage/team-todo-api/internal/spreadsheet"
	"github.com/yukikurage/team-todo-api/internal/stats"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

type handlerTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	tokens      *identity.Tokens
	authService *services.AuthService
}

type handlerOptions struct {
	sheets    spreadsheet.Writer
	aiService *services.AIService
}

func setupHandlerTestEnv(t *testing.T, opts handlerOptions) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.AllModels...))

	todoRepo := repository.NewTodoRepository(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	registry := triggers.NewRegistry()
	dispatcher := triggers.NewDispatcher(registry)
	stats.NewEngine(todoRepo, statsRepo, dispatcher, 4).Register(registry)

	tokens := identity.NewTokens("handler-test-secret", time.Hour)
	authService := services.NewAuthService(userRepo, tokens)
	dashboardService := services.NewDashboardService(todoRepo, userRepo, statsRepo, 500)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, Handlers{
		Auth:  NewAuthHandler(authService),
		Team:  NewTeamHandler(services.NewTeamService(teamRepo, userRepo)),
		Todo:  NewTodoHandler(services.NewTodoService(todoRepo, dispatcher), opts.aiService),
		Admin: NewAdminHandler(services.NewAdminService(todoRepo, statsRepo, opts.sheets), dashboardService),
	}, authService)

	return handlerTestEnv{
		db:          db,
		router:      r,
		tokens:      tokens,
		authService: authService,
	}
}

func (env handlerTestEnv) createTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, InviteCode: name + "-CODE"}
	require.NoError(t, env.db.Create(team).Error)
	return team
}

func (env handlerTestEnv) createUser(t *testing.T, email string, team *models.Team, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, PasswordHash: "x", Role: role}
	if team != nil {
		user.TeamID = &team.ID
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env handlerTestEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := env.tokens.Issue(identity.FromUser(user))
	require.NoError(t, err)
	return token
}

// do sends a JSON request, authenticated as user when user is not nil.
func (env handlerTestEnv) do(t *testing.T, method, target string, user *models.User, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, user))
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
