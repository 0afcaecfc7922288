package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/team-todo-api/internal/app"
	"github.com/yukikurage/team-todo-api/internal/config"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/handlers"
	"github.com/yukikurage/team-todo-api/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	rdb, err := app.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	application, err := app.New(cfg, database.GetDB(), rdb)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	if err := application.EnableSpreadsheets(ctx); err != nil {
		log.WithError(err).Warn("Google Sheets unavailable, backups are disabled")
	}
	if application.AI == nil {
		log.Warn("OPENAI_API_KEY not set, todo suggestions are disabled")
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                // Redis pool size
		"tcp",             // network type
		cfg.RedisAddr(),   // Redis address from config
		"",                // username (empty for default user)
		cfg.RedisPassword, // password
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:  handlers.NewAuthHandler(application.Auth),
		Team:  handlers.NewTeamHandler(application.Team),
		Todo:  handlers.NewTodoHandler(application.Todo, application.AI),
		Admin: handlers.NewAdminHandler(application.Admin, application.Board),
	}, application.Auth)

	// Start server
	log.WithField("addr", cfg.ListenAddr).Info("Server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}
