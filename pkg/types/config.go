package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "kinetics-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CompoundConfig holds settings for the compound registry lookup stage.
type CompoundConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional registry API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of backoff retries on rate-limited
	// registry responses (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FitConfig holds settings for the parameter-fitting stage.
type FitConfig struct {
	// Engine selects the fitting engine binary: "copasise" or "pscfit".
	// Empty means auto-detect, trying copasise first.
	Engine string `json:"engine" yaml:"engine"`

	// Method is the optimization method passed to the engine
	// (e.g. "levenberg-marquardt", "hooke-jeeves", "particle-swarm").
	Method string `json:"method" yaml:"method"`

	// WorkDir is the scratch directory for engine reports. Empty uses a
	// per-run temporary directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
}

// ResultsConfig holds settings for the fit results store.
type ResultsConfig struct {
	// ResultsDir is the base directory for the results store
	// (contains index/, charts/).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of query results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// EngineConfig groups all stage configurations for the tool.
type EngineConfig struct {
	Compound CompoundConfig `json:"compound" yaml:"compound"`
	Fit      FitConfig      `json:"fit" yaml:"fit"`
	Results  ResultsConfig  `json:"results" yaml:"results"`
}
