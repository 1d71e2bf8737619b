// Package model defines the canonical data types shared across the scrape
// pipeline, the output serializers, and the run-history store.
package model

// ModelRecord is one marketplace model listing in its canonical shape.
//
// The JSON field names and their order are the durable contract consumed by
// the history-diff workflow; renaming or reordering fields breaks diffing
// against previously published artifacts.
//
// Only ID and Name are mandatory. All other fields carry upstream values
// when present and their documented defaults otherwise. When the same ID
// appears on multiple pages the first occurrence wins (see scrape.NormalizeAll).
type ModelRecord struct {
	ID                       string   `json:"id"`
	Registry                 string   `json:"registry"`
	Name                     string   `json:"name"`
	OriginalName             string   `json:"original_name"`
	FriendlyName             string   `json:"friendly_name"`
	Task                     string   `json:"task"`
	Publisher                string   `json:"publisher"`
	License                  string   `json:"license"`
	Description              string   `json:"description"`
	Summary                  string   `json:"summary"`
	ModelFamily              string   `json:"model_family"`
	ModelVersion             string   `json:"model_version"`
	Notes                    string   `json:"notes"`
	Tags                     []string `json:"tags"`
	RateLimitTier            string   `json:"rate_limit_tier"`
	SupportedLanguages       []string `json:"supported_languages"`
	MaxOutputTokens          *int64   `json:"max_output_tokens"`
	MaxInputTokens           *int64   `json:"max_input_tokens"`
	TrainingDataDate         string   `json:"training_data_date"`
	Evaluation               string   `json:"evaluation"`
	LicenseDescription       string   `json:"license_description"`
	StaticModel              bool     `json:"static_model"`
	SupportedInputModalities []string `json:"supported_input_modalities"`
	Type                     string   `json:"type"`
	ModelURL                 string   `json:"model_url"`
	Page                     int      `json:"page"`
}
