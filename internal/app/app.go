// Package app wires repositories, the event bus and services together for
// the API server and the functions CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/config"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/report"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/services"
	"github.com/yukikurage/team-todo-api/internal/spreadsheet"
	"github.com/yukikurage/team-todo-api/internal/stats"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

// Event bus modes.
const (
	EventBusInline = "inline"
	EventBusRedis  = "redis"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config *config.Config
	Redis  *redis.Client

	Todos repository.TodoRepository
	Users repository.UserRepository
	Teams repository.TeamRepository
	Stats repository.StatsRepository

	// Registry and Dispatcher run the stats handlers in this process.
	Registry   *triggers.Registry
	Dispatcher *triggers.Dispatcher
	// Bus is where todo and shard mutations are published.
	Bus    triggers.Publisher
	Engine *stats.Engine

	Tokens *identity.Tokens
	Auth   *services.AuthService
	Team   *services.TeamService
	Todo   *services.TodoService
	AI     *services.AIService
	Admin  *services.AdminService
	Board  *services.DashboardService
}

// New builds an App over an open database and Redis client.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	a := &App{
		Config: cfg,
		Redis:  rdb,
		Todos:  repository.NewTodoRepository(db),
		Users:  repository.NewUserRepository(db),
		Teams:  repository.NewTeamRepository(db),
		Stats:  repository.NewStatsRepository(db),
	}

	a.Registry = triggers.NewRegistry()
	a.Dispatcher = triggers.NewDispatcher(a.Registry)

	switch cfg.EventBus {
	case EventBusInline, "":
		a.Bus = a.Dispatcher
	case EventBusRedis:
		if rdb == nil {
			return nil, fmt.Errorf("event bus %q needs a redis client", cfg.EventBus)
		}
		a.Bus = triggers.NewRedisPublisher(rdb, cfg.EventsChannel)
	default:
		return nil, fmt.Errorf("unknown event bus %q", cfg.EventBus)
	}

	a.Engine = stats.NewEngine(a.Todos, a.Stats, a.Bus, cfg.StatsShardCount)
	a.Engine.Register(a.Registry)

	a.Tokens = identity.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	a.Auth = services.NewAuthService(a.Users, a.Tokens)
	a.Team = services.NewTeamService(a.Teams, a.Users)
	a.Todo = services.NewTodoService(a.Todos, a.Bus)
	a.Board = services.NewDashboardService(a.Todos, a.Users, a.Stats, cfg.DashboardSampleLimit)
	if cfg.OpenAIAPIKey != "" {
		a.AI = services.NewAIService(cfg.OpenAIAPIKey)
	}
	a.Admin = services.NewAdminService(a.Todos, a.Stats, nil)

	log.WithFields(log.Fields{
		"event_bus": cfg.EventBus,
		"triggers":  a.Registry.Names(),
	}).Info("application wired")
	return a, nil
}

// EnableSpreadsheets connects the admin service to Google Sheets. Without it
// backups fail with ErrBackupFailed.
func (a *App) EnableSpreadsheets(ctx context.Context) error {
	writer, err := spreadsheet.NewGoogleWriter(ctx, spreadsheet.CredentialOptions(a.Config.GoogleCredentialsFile)...)
	if err != nil {
		return err
	}
	a.Admin = services.NewAdminService(a.Todos, a.Stats, writer)
	return nil
}

// ReportSink returns the configured report sink.
func (a *App) ReportSink() (report.Sink, error) {
	switch a.Config.ReportSink {
	case "log", "":
		return report.NewLogSink(log.StandardLogger()), nil
	case "redis":
		if a.Redis == nil {
			return nil, fmt.Errorf("report sink %q needs a redis client", a.Config.ReportSink)
		}
		return report.NewRedisOutbox(a.Redis, a.Config.ReportOutboxKey), nil
	default:
		return nil, fmt.Errorf("unknown report sink %q", a.Config.ReportSink)
	}
}

// Reports builds the summary report service over the configured sink.
func (a *App) Reports() (*services.ReportService, error) {
	sink, err := a.ReportSink()
	if err != nil {
		return nil, err
	}
	return services.NewReportService(a.Board, a.Teams, a.Users, sink), nil
}

// Subscriber feeds mutations from the Redis bus into this process's
// stats handlers.
func (a *App) Subscriber() (*triggers.RedisSubscriber, error) {
	if a.Redis == nil {
		return nil, fmt.Errorf("subscriber needs a redis client")
	}
	return triggers.NewRedisSubscriber(a.Redis, a.Config.EventsChannel, a.Dispatcher), nil
}

// NewRedisClient opens a client for the configured Redis server and checks
// that it answers.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr(), err)
	}
	return rdb, nil
}
