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

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveToFile(&Config{
		Instance: InstanceConfig{Phrase: "correct horse battery staple"},
	}, path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":8443", cfg.Transport.ListenAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "correct horse battery staple", cfg.Instance.Phrase)
	assert.Equal(t, 50*time.Millisecond, cfg.Instance.ApplyInterval())
}

func TestLoadFromFileMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := &Config{
		Environment: "production",
		Storage:     StorageConfig{Driver: "postgres", Postgres: PostgresConfig{Host: "db", Database: "syncbase"}},
	}
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "production", loaded.Environment)
	assert.Equal(t, "postgres", loaded.Storage.Driver)
	assert.Equal(t, "db", loaded.Storage.Postgres.Host)
	assert.Equal(t, "syncbase", loaded.Storage.Postgres.Database)
	assert.Equal(t, 5432, loaded.Storage.Postgres.Port)
}
