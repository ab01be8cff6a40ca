package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sti-survey-engine/0.1"). Polite identification is expected by
	// the doi.org, Crossref, and GitHub APIs.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts for transient failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DatasetConfig locates the survey dataset and derived outputs.
type DatasetConfig struct {
	// Path is the survey JSON file (canonical or legacy wire shape).
	Path string `json:"path" yaml:"path"`

	// OutputDir is the directory for derived artifacts (snapshots, edges, reports).
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Path is the catalog database file (e.g. "catalog/sti-survey.db").
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// VerifyConfig holds settings for DOI verification.
type VerifyConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the pause between consecutive external lookups (default 250ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// ContactEmail is appended to the User-Agent for the Crossref polite pool.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
}

// LicenseConfig holds settings for repository license lookups.
type LicenseConfig struct {
	HTTPConfig `yaml:",inline"`

	// Token is a GitHub API token for higher rate limits.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// ToolkitConfig groups all stage configurations for the curation toolkit.
type ToolkitConfig struct {
	Dataset  DatasetConfig `json:"dataset" yaml:"dataset"`
	Catalog  CatalogConfig `json:"catalog" yaml:"catalog"`
	Verify   VerifyConfig  `json:"verify" yaml:"verify"`
	Licenses LicenseConfig `json:"licenses" yaml:"licenses"`
}
