// Package config loads CLI configuration from defaults, docprop.yaml,
// DOCPROP_* environment variables and command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot anchors relative paths; it is inferred, never read from file
	ProjectRoot string `koanf:"-"`

	ModelsDir     string   `koanf:"models_dir"`
	Manifest      string   `koanf:"manifest"`
	Environment   string   `koanf:"environment"`
	Verbose       bool     `koanf:"verbose"`
	OutputFormat  string   `koanf:"output"`
	PreviewLength int      `koanf:"preview_length"`
	FailOn        []string `koanf:"fail_on"`
	Concurrency   int      `koanf:"concurrency"`
}

// Default configuration values.
const (
	DefaultModelsDir     = "models"
	DefaultEnv           = "dev"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPreviewLength = 60
)

// ConfigFileNames are searched in order in the project root.
var ConfigFileNames = []string{"docprop.yaml", "docprop.yml"}

// EnvPrefix prefixes environment overrides: DOCPROP_MODELS_DIR -> models_dir.
const EnvPrefix = "DOCPROP_"

// Defaults returns a Config holding the default values.
func Defaults() *Config {
	return &Config{
		ModelsDir:     DefaultModelsDir,
		Environment:   DefaultEnv,
		OutputFormat:  DefaultOutput,
		PreviewLength: DefaultPreviewLength,
	}
}
