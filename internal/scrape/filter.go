package scrape

import (
	"strings"

	"github.com/sells-group/modelscan/internal/model"
)

// FilterByFamily returns the records whose model family contains family,
// case-insensitively, preserving order. An empty family returns the input
// unchanged. Filtering affects membership only; record contents are never
// mutated. A value matching nothing yields an empty slice, not an error.
func FilterByFamily(records []model.ModelRecord, family string) []model.ModelRecord {
	if family == "" {
		return records
	}

	needle := strings.ToLower(family)
	out := make([]model.ModelRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.ModelFamily), needle) {
			out = append(out, rec)
		}
	}
	return out
}
