// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads the YAML-driven Config a syncbase process starts
// from: which writer phrase to derive its signer from, where the View
// persists, how peers reach it, and how it logs and reports metrics.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration a syncbase process loads at startup.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Instance    InstanceConfig  `yaml:"instance" json:"instance"`
	Storage     StorageConfig   `yaml:"storage" json:"storage"`
	Transport   TransportConfig `yaml:"transport" json:"transport"`
	Logging     LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// InstanceConfig configures the instance package's Open call.
type InstanceConfig struct {
	// Phrase derives this instance's writer keypair (spec §4.1). Left
	// empty, the CLI generates a fresh random phrase on `syncbase init`
	// and expects it back on every subsequent `syncbase serve`.
	Phrase string `yaml:"phrase" json:"phrase"`
	// ApplyIntervalMS overrides instance.defaultApplyInterval; zero
	// keeps the package default.
	ApplyIntervalMS int `yaml:"apply_interval_ms" json:"apply_interval_ms"`
}

// StorageConfig selects the View's backing store.
type StorageConfig struct {
	// Driver is "memory" or "postgres".
	Driver   string         `yaml:"driver" json:"driver"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

// PostgresConfig mirrors view/postgres.Config's fields so a loaded
// Config can be handed straight to postgres.New.
type PostgresConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`
}

// TransportConfig configures the replication listener (spec §4.8's
// pluggable transport; the reference implementation is a websocket
// relay — logstream/wsrelay — on ListenAddr).
type TransportConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig configures the internal/metrics HTTP exposition.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile reads and parses a YAML config file, applying defaults
// to whatever the file left unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile marshals cfg as YAML and writes it to path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// setDefaults fills in a new Config's zero-value fields with the
// values a bare `syncbase serve` should run with.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Driver == "postgres" {
		if cfg.Storage.Postgres.Port == 0 {
			cfg.Storage.Postgres.Port = 5432
		}
		if cfg.Storage.Postgres.SSLMode == "" {
			cfg.Storage.Postgres.SSLMode = "disable"
		}
	}

	if cfg.Transport.ListenAddr == "" {
		cfg.Transport.ListenAddr = ":8443"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Instance.ApplyIntervalMS == 0 {
		cfg.Instance.ApplyIntervalMS = 50
	}
}

// ApplyInterval converts ApplyIntervalMS to a time.Duration.
func (c InstanceConfig) ApplyInterval() time.Duration {
	return time.Duration(c.ApplyIntervalMS) * time.Millisecond
}
