package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override PipelineConfig
// (FLAVORSPECTRA_INPUT_ROOT) and LogConfig (FLAVORSPECTRA_LOG_LEVEL). Names
// are derived with split_words only, so unprefixed variables are never read.
const EnvPrefix = "FLAVORSPECTRA"

// PipelineConfig holds the settings of the aggregation pipeline.
type PipelineConfig struct {
	InputRoot  string `yaml:"input_root" split_words:"true"`
	OutputPath string `yaml:"output_path" split_words:"true"`
	// Variant is "combined" (iperf3.json only) or "discrete" (ping.log, cwnd.log and iperf3.json).
	Variant string `yaml:"variant" split_words:"true"`
	// IntervalPolicy is "abort" or "skip" and applies to iperf3 intervals lacking stream data.
	IntervalPolicy string `yaml:"interval_policy" split_words:"true"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level" split_words:"true"`
	JSON  bool   `yaml:"json" split_words:"true"`
}

// GobConfig holds the configuration for the gob dataset writer.
type GobConfig struct {
	RootPath string `yaml:"root_path"`
}

// ParquetConfig holds the configuration for the parquet dataset writer.
type ParquetConfig struct {
	Path        string `yaml:"path"`
	Parallelism int64  `yaml:"parallelism"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// NATSConfig holds the configuration for publishing samples to NATS.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines one additional output sink. The canonical CSV output is
// always written to PipelineConfig.OutputPath.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Gob        GobConfig        `yaml:"gob"`
	Parquet    ParquetConfig    `yaml:"parquet"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// SMTPConfig holds the configuration for the email report.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// NotifyConfig holds the configuration for the aggregation report.
type NotifyConfig struct {
	SMTP SMTPConfig `yaml:"smtp"`
}

// APIConfig holds the configuration for the dataset query API.
type APIConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatasetPath string `yaml:"dataset_path"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
	Writers  []WriterDef    `yaml:"writers"`
	Notify   NotifyConfig   `yaml:"notify"`
	API      APIConfig      `yaml:"api"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputRoot:      "results",
			OutputPath:     "combined_results.csv",
			Variant:        "combined",
			IntervalPolicy: "abort",
		},
		Log: LogConfig{Level: "info"},
		API: APIConfig{
			ListenAddr:  ":8080",
			DatasetPath: "combined_results.csv",
		},
	}
}

// LoadConfig reads the configuration from a YAML file on top of Default and
// applies environment overrides.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides pipeline and log settings from FLAVORSPECTRA_* variables.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, &c.Pipeline); err != nil {
		return fmt.Errorf("failed to apply pipeline environment: %w", err)
	}
	if err := envconfig.Process(EnvPrefix+"_LOG", &c.Log); err != nil {
		return fmt.Errorf("failed to apply log environment: %w", err)
	}
	return nil
}
