package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Codegen CodegenConfig `yaml:"codegen" json:"codegen"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
}

// ServerConfig configures the dataset service connection
type ServerConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`           // dataset service endpoint
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`             // request timeout
	MaxUploadMB int           `yaml:"max_upload_mb" json:"max_upload_mb"` // upload size cap
}

// CodegenConfig configures the code generation provider
type CodegenConfig struct {
	APIKey  string        `yaml:"api_key" json:"api_key"` // API key (or MLFORGE_CODEGEN_API_KEY)
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Model   string        `yaml:"model" json:"model"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// StorageConfig configures local state locations
type StorageConfig struct {
	StateDir   string `yaml:"state_dir" json:"state_dir"`     // split artifact location
	ProjectDir string `yaml:"project_dir" json:"project_dir"` // saved project files
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // table|json|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	RowLimit      int    `yaml:"row_limit" json:"row_limit"`           // default head/tail rows
}

// WatchConfig configures dataset file watching
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"` // settle time before re-upload
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:     "http://localhost:5000",
			Timeout:     30 * time.Second,
			MaxUploadMB: 100,
		},
		Codegen: CodegenConfig{
			BaseURL: "https://api.groq.com/openai",
			Model:   "mixtral-8x7b-32768",
			Timeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			StateDir:   "~/.local/state/mlforge",
			ProjectDir: "~/.local/share/mlforge/projects",
		},
		Output: OutputConfig{
			DefaultFormat: "table",
			ColorMode:     "auto",
			Verbose:       false,
			RowLimit:      10,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if c.Codegen.Timeout < 0 {
		return fmt.Errorf("codegen timeout must be non-negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	return nil
}

// validateServerConfig validates dataset service configuration
func (c *Config) validateServerConfig() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base_url is required")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server timeout must be non-negative")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be greater than 0")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"table": true,
			"json":  true,
			"csv":   true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: table, json, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.RowLimit < 1 {
		return fmt.Errorf("row_limit must be greater than 0")
	}
	return nil
}
