package scrape

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/modelscan/internal/model"
	"github.com/sells-group/modelscan/pkg/marketplace"
)

// RejectionError reports a raw record that cannot be normalized because a
// mandatory field is missing. Rejections are recoverable: the record is
// excluded and the run continues.
type RejectionError struct {
	Page int
	Hint string // whatever identifying info the raw record carried
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("record on page %d missing mandatory id or name (%s)", e.Page, e.Hint)
}

// Report counts the recoverable incidents of one normalization pass.
type Report struct {
	Rejected   int
	Duplicates int
}

// Normalize maps one raw upstream record into the canonical schema.
//
// Only id and name are mandatory; a record missing either yields a
// *RejectionError. Every other field is coerced leniently: strings are
// trimmed, numeric fields parse from numbers or numeric strings and fall
// back to nil, collections of any shape become deduplicated sorted string
// sets. task and model_family default to "unknown" when absent.
func Normalize(raw RawRecord, page int) (model.ModelRecord, error) {
	m := raw.Fields

	id := firstString(m, "original_name", "name")
	name := firstString(m, "friendly_name", "name")
	if id == "" || name == "" {
		return model.ModelRecord{}, &RejectionError{Page: page, Hint: identifyingHint(m)}
	}

	return model.ModelRecord{
		ID:                       id,
		Registry:                 asString(m["registry"]),
		Name:                     name,
		OriginalName:             firstString(m, "original_name", "name"),
		FriendlyName:             firstString(m, "friendly_name", "name"),
		Task:                     stringOr(m["task"], "unknown"),
		Publisher:                asString(m["publisher"]),
		License:                  asString(m["license"]),
		Description:              asString(m["description"]),
		Summary:                  asString(m["summary"]),
		ModelFamily:              stringOr(m["model_family"], "unknown"),
		ModelVersion:             asString(m["model_version"]),
		Notes:                    asString(m["notes"]),
		Tags:                     asStringSet(m["tags"]),
		RateLimitTier:            asString(m["rate_limit_tier"]),
		SupportedLanguages:       asStringSet(m["supported_languages"]),
		MaxOutputTokens:          asInt64Ptr(m["max_output_tokens"]),
		MaxInputTokens:           asInt64Ptr(m["max_input_tokens"]),
		TrainingDataDate:         asString(m["training_data_date"]),
		Evaluation:               asString(m["evaluation"]),
		LicenseDescription:       asString(m["license_description"]),
		StaticModel:              asBool(m["static_model"]),
		SupportedInputModalities: asStringSet(m["supported_input_modalities"]),
		Type:                     asString(m["type"]),
		ModelURL:                 asString(m["model_url"]),
		Page:                     page,
	}, nil
}

// NormalizeAll normalizes a raw record collection in order. Rejections are
// logged and counted; duplicate ids keep the first occurrence (page order)
// and count the rest, so downstream stages see unique ids.
func NormalizeAll(raws []RawRecord) ([]model.ModelRecord, Report) {
	records := make([]model.ModelRecord, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	var report Report

	for _, raw := range raws {
		rec, err := Normalize(raw, raw.Page)
		if err != nil {
			report.Rejected++
			zap.L().Warn("scrape: rejecting record", zap.Error(err))
			continue
		}
		if seen[rec.ID] {
			report.Duplicates++
			zap.L().Debug("scrape: dropping duplicate id",
				zap.String("id", rec.ID),
				zap.Int("page", raw.Page),
			)
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}

	return records, report
}

// identifyingHint collects whatever identity the raw record carries, for
// the rejection log line.
func identifyingHint(m marketplace.RawModel) string {
	var parts []string
	for _, key := range []string{"original_name", "name", "friendly_name", "registry", "publisher"} {
		if v := asString(m[key]); v != "" {
			parts = append(parts, key+"="+v)
		}
	}
	if len(parts) == 0 {
		return "no identifying fields"
	}
	return strings.Join(parts, " ")
}

// firstString returns the first non-blank string among the given keys,
// trimmed.
func firstString(m marketplace.RawModel, keys ...string) string {
	for _, key := range keys {
		if v := asString(m[key]); v != "" {
			return v
		}
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringOr(v any, def string) string {
	if s := asString(v); s != "" {
		return s
	}
	return def
}

// asInt64Ptr parses a numeric field leniently: JSON numbers, integers, and
// numeric strings all coerce; anything else is nil rather than an error.
func asInt64Ptr(v any) *int64 {
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i
	case int:
		i := int64(n)
		return &i
	case int64:
		return &n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			i := int64(f)
			return &i
		}
		return nil
	default:
		return nil
	}
}

// asStringSet coerces whatever collection shape upstream provides into a
// deduplicated, sorted set of trimmed strings. Scalars become a one-element
// set; unknown shapes an empty one.
func asStringSet(v any) []string {
	var items []string
	switch vs := v.(type) {
	case []any:
		for _, item := range vs {
			if s := asString(item); s != "" {
				items = append(items, s)
			}
		}
	case []string:
		for _, item := range vs {
			if s := strings.TrimSpace(item); s != "" {
				items = append(items, s)
			}
		}
	case string:
		if s := strings.TrimSpace(vs); s != "" {
			items = append(items, s)
		}
	}

	set := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		set = append(set, s)
	}
	sort.Strings(set)
	return set
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}
