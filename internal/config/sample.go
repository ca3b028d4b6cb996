package config

// SampleConfig returns a fully commented sample configuration file
func SampleConfig() string {
	return `# mlforge configuration file
# Searched at ./.mlforge.yaml, ~/.config/mlforge/config.yaml,
# /etc/mlforge/config.yaml. Environment variables with the MLFORGE_
# prefix override file settings.

version: "1.0"

# Dataset service connection
server:
  # Base URL of the dataset/model service
  base_url: "http://localhost:5000"
  # Request timeout for every call
  timeout: 30s
  # Maximum dataset upload size in megabytes
  max_upload_mb: 100

# Code generation (OpenAI-compatible chat completions)
codegen:
  # API key; prefer setting MLFORGE_CODEGEN_API_KEY instead
  api_key: ""
  base_url: "https://api.groq.com/openai"
  model: "mixtral-8x7b-32768"
  timeout: 60s

# Local state locations
storage:
  # Split artifact directory
  state_dir: "~/.local/state/mlforge"
  # Saved project files
  project_dir: "~/.local/share/mlforge/projects"

# Output formatting
output:
  # table, json, or csv
  default_format: "table"
  # auto, always, or never
  color_mode: "auto"
  verbose: false
  # Default number of rows for head/tail
  row_limit: 10

# Dataset file watching
watch:
  # Settle time before a changed dataset is re-uploaded
  debounce: 500ms
`
}

// MinimalSampleConfig returns a compact sample with essential settings
func MinimalSampleConfig() string {
	return `# mlforge configuration
version: "1.0"
server:
  base_url: "http://localhost:5000"
output:
  default_format: "table"
`
}
