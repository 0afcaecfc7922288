package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes the dashboard and privacy queries rely on that
// are not expressible as single-column struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		table   string
		name    string
		columns string
	}{
		// Team-scoped listings filter on team and secrecy together
		{&models.Todo{}, "todos", "idx_todos_team_secret", "team_id, is_secret"},
		// Urgent-open and distribution counts
		{&models.Todo{}, "todos", "idx_todos_team_priority", "team_id, priority, is_completed"},
		// Active-user metric
		{&models.User{}, "users", "idx_users_team_last_login", "team_id, last_login_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Info("Created index")
	}

	return nil
}
