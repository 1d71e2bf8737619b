package output

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/modelscan/internal/model"
)

// descriptionLimit is the longest description shown in the table view.
const descriptionLimit = 100

// RenderTable writes a condensed tabular view of the records. The table is
// lossy (long descriptions are truncated, most fields omitted) and is never
// used for the persisted artifact.
func RenderTable(w io.Writer, records []model.ModelRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Task", "Model Family", "Description", "Page"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.Name,
			rec.Task,
			rec.ModelFamily,
			truncate(rec.Description, descriptionLimit),
			strconv.Itoa(rec.Page),
		})
	}
	t.Render()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
