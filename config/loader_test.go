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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToEmptyConfig(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(t.TempDir(), "nonexistent")})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":8443", cfg.Transport.ListenAddr)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SYNCBASE_LISTEN_ADDR", ":7000")
	t.Setenv("SYNCBASE_METRICS_ENABLED", "true")

	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(t.TempDir(), "nonexistent")})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Transport.ListenAddr)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalidStorageDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	require.NoError(t, SaveToFile(&Config{Storage: StorageConfig{Driver: "sqlite"}}, path))

	_, err := Load(LoaderOptions{ConfigDir: dir, Environment: "unused"})
	assert.Error(t, err)
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	require.NoError(t, SaveToFile(&Config{Storage: StorageConfig{Driver: "sqlite"}}, path))

	assert.Panics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: dir, Environment: "unused"})
	})
}
