package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yukikurage/team-todo-api/internal/privacy"
	"github.com/yukikurage/team-todo-api/internal/repository"
)

var csvHeader = []string{
	"Date", "User Name", "Content", "Priority", "Status", "Privacy", "Completed At", "Duration (h)",
}

// Filename is the attachment name of a team's CSV export.
func Filename(teamID uint64) string {
	return fmt.Sprintf("team_todos_%d.csv", teamID)
}

// ToCSV writes the export rows, header first. Rows must already be redacted.
func ToCSV(w io.Writer, rows []repository.ExportRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		status := "Pending"
		completedAt := ""
		duration := ""
		if r.IsCompleted {
			status = "Completed"
		}
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.UTC().Format(time.RFC3339)
			duration = formatHours(r.CompletedAt.Sub(r.CreatedAt))
		}

		row := []string{
			r.CreatedAt.UTC().Format(time.DateOnly),
			r.OwnerName,
			r.Content,
			strconv.Itoa(r.Priority),
			status,
			privacy.Label(r.IsSecret),
			completedAt,
			duration,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatHours(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Hours(), 'f', 1, 64)
}
