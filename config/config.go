// Package config loads server configuration from an optional YAML file,
// with defaults that run the server out of the box.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig covers SQLite persistence.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// AttendanceConfig tunes the lifecycle engine.
type AttendanceConfig struct {
	// GeofenceMeters is the verification radius around an employee's
	// home location. Zero falls back to the engine default (100 m).
	GeofenceMeters float64 `yaml:"geofence_meters"`

	// CommitLatency simulates storage latency on mutations, e.g. "150ms".
	CommitLatency    time.Duration `yaml:"-"`
	CommitLatencyRaw string        `yaml:"commit_latency"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{ListenAddr: ":8080"},
		Storage: StorageConfig{SQLitePath: "attendance.db"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "attendance.db"
	}
	if c.Attendance.GeofenceMeters < 0 {
		return fmt.Errorf("config: attendance.geofence_meters must not be negative")
	}

	if c.Attendance.CommitLatencyRaw != "" {
		d, err := time.ParseDuration(c.Attendance.CommitLatencyRaw)
		if err != nil {
			return fmt.Errorf("config: attendance.commit_latency: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config: attendance.commit_latency must not be negative")
		}
		c.Attendance.CommitLatency = d
	}
	return nil
}
