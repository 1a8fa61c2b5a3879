package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source" split_words:"true"`
	Export  ExportConfig  `yaml:"export" split_words:"true"`
	Logging LoggingConfig `yaml:"logging" split_words:"true"`
	Tracing TracingConfig `yaml:"tracing" split_words:"true"`
	Metrics MetricsConfig `yaml:"metrics" split_words:"true"`
}

// SourceConfig selects and configures the store backend
type SourceConfig struct {
	Driver         string        `yaml:"driver" split_words:"true" validate:"required,oneof=mongo sqlite xlsx"`
	URI            string        `yaml:"uri" split_words:"true" validate:"required_if=Driver mongo"`
	Database       string        `yaml:"database" split_words:"true" validate:"required_if=Driver mongo"`
	Path           string        `yaml:"path" split_words:"true" validate:"required_unless=Driver mongo"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" split_words:"true" validate:"gt=0"`
}

// ExportConfig contains the export plan and the composition settings
type ExportConfig struct {
	// BaseDir prefixes relative job outputs; empty means the working directory
	BaseDir string `yaml:"base_dir" split_words:"true"`
	// Jobs names the plan entries run by default
	Jobs              []string   `yaml:"jobs" split_words:"true" validate:"min=1,dive,required"`
	Plan              ExportPlan `yaml:"plan" ignored:"true" validate:"min=1,dive"`
	CompositionSymbol string     `yaml:"composition_symbol" split_words:"true" validate:"required"`
	MemberColumn      string     `yaml:"member_column" split_words:"true" validate:"required"`
	SymbolColumn      string     `yaml:"symbol_column" split_words:"true" validate:"required,nefield=MemberColumn"`
	BOMPrefix         bool       `yaml:"bom_prefix" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" split_words:"true" validate:"oneof=none stdout"`
	SampleRatio float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
}

// MetricsConfig contains export counter configuration
type MetricsConfig struct {
	// TextfilePath receives the counters in Prometheus text format after a run
	TextfilePath string `yaml:"textfile_path" split_words:"true"`
}

// Load loads configuration from the first config file found and the environment
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile layers defaults, the YAML file at path (if any) and environment
// variables, in increasing order of precedence, then validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; absent keys keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints and the job selection
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Export.Plan))
	for _, job := range c.Export.Plan {
		if names[job.Name] {
			return fmt.Errorf("duplicate job %q in export plan", job.Name)
		}
		names[job.Name] = true
	}
	if _, err := c.Export.Plan.Select(c.Export.Jobs); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:         DriverMongo,
			URI:            DefaultMongoURI,
			Database:       DefaultMongoDatabase,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Export: ExportConfig{
			Jobs:              []string{"composition"},
			Plan:              DefaultPlan(),
			CompositionSymbol: DefaultCompositionSymbol,
			MemberColumn:      DefaultMemberColumn,
			SymbolColumn:      DefaultSymbolColumn,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRatio: 1.0,
		},
	}
}
