package export

import (
	"time"

	"github.com/yukikurage/team-todo-api/internal/repository"
)

// BackupRange is where team backups are written.
const BackupRange = "Sheet1!A1"

// SheetValues lays out export rows for a spreadsheet backup, header first.
func SheetValues(rows []repository.ExportRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Created At", "Content", "Priority", "Secret", "Completed"})
	for _, r := range rows {
		values = append(values, []any{
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Content,
			r.Priority,
			r.IsSecret,
			r.IsCompleted,
		})
	}
	return values
}
