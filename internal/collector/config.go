package collector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds one collector run's settings. A YAML file overrides flag
// defaults so scheduled runs don't need long command lines.
type Config struct {
	CountyFile     string  `yaml:"county_file"`
	Sample         bool    `yaml:"sample"`
	MaxWorkers     int     `yaml:"max_workers"`
	OutputDir      string  `yaml:"output_dir"`
	IncludeAlerts  bool    `yaml:"include_alerts"`
	BaseURL        string  `yaml:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_second"`
	Notify         bool    `yaml:"notify"`
	NATSURL        string  `yaml:"nats_url"`
	NATSSubject    string  `yaml:"nats_subject"`
}

func DefaultConfig() Config {
	return Config{
		MaxWorkers:     3,
		OutputDir:      "weather_data",
		BaseURL:        "https://api.weather.gov",
		RequestsPerSec: 1,
		NATSURL:        "nats://127.0.0.1:4222",
		NATSSubject:    "corpus.refresh",
	}
}

// LoadConfigFile merges a YAML file over cfg. Missing file fields keep their
// current values.
func LoadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
