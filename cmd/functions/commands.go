package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/app"
	"github.com/yukikurage/team-todo-api/internal/config"
	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/logging"
)

// bootstrap loads configuration and opens the database. Redis is connected
// when forced or when the configured bus or report sink needs it.
func bootstrap(ctx context.Context, forceRedis bool) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	if err := database.Connect(cfg); err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(); err != nil {
		return nil, nil, err
	}

	var rdb *redis.Client
	cleanup := func() {}
	if forceRedis || cfg.EventBus == app.EventBusRedis || cfg.ReportSink == "redis" {
		rdb, err = app.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { rdb.Close() }
	}

	a, err := app.New(cfg, database.GetDB(), rdb)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume todo mutations from Redis and keep stats current",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.Config.EventBus != app.EventBusRedis {
				log.WithField("event_bus", a.Config.EventBus).
					Warn("API is not publishing to redis; the worker will see no mutations from it")
			}

			sub, err := a.Subscriber()
			if err != nil {
				return err
			}
			return sub.Run(ctx, nil)
		},
	}
}

func recomputeMemberCmd() *cobra.Command {
	var teamID, userID uint64

	cmd := &cobra.Command{
		Use:   "recompute-member",
		Short: "Rebuild one member's stats from their todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Engine.RecomputeMember(cmd.Context(), teamID, userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed stats for user %d in team %d\n", userID, teamID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team ID")
	cmd.Flags().Uint64Var(&userID, "user", 0, "User ID")
	cmd.MarkFlagRequired("team")
	cmd.MarkFlagRequired("user")

	return cmd
}

func rollupTeamCmd() *cobra.Command {
	var teamID uint64

	cmd := &cobra.Command{
		Use:   "rollup-team",
		Short: "Recompute a team's totals from its shard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Engine.RollupTeam(cmd.Context(), teamID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled up team %d\n", teamID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team ID")
	cmd.MarkFlagRequired("team")

	return cmd
}

func rebuildShardsCmd() *cobra.Command {
	var teamID uint64

	cmd := &cobra.Command{
		Use:   "rebuild-shards",
		Short: "Recount a team's todos into its shard counters and roll them up",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Engine.RebuildShards(cmd.Context(), teamID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt shards of team %d\n", teamID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team ID")
	cmd.MarkFlagRequired("team")

	return cmd
}

func backupCmd() *cobra.Command {
	var (
		teamID uint64
		sheet  string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a team's todos to a Google spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.EnableSpreadsheets(cmd.Context()); err != nil {
				return err
			}
			count, err := a.Admin.Backup(cmd.Context(), teamID, sheet)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backed up %d todos of team %d\n", count, teamID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team ID")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Spreadsheet ID")
	cmd.MarkFlagRequired("team")
	cmd.MarkFlagRequired("sheet")

	return cmd
}

func reportCmd() *cobra.Command {
	var teamID uint64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Send the team summary to every team admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			reports, err := a.Reports()
			if err != nil {
				return err
			}
			sent, err := reports.SendTeamReport(cmd.Context(), teamID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reports for team %d\n", sent, teamID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team ID")
	cmd.MarkFlagRequired("team")

	return cmd
}
