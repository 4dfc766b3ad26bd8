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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("SYNCBASE_TEST_VAR", "resolved")

	assert.Equal(t, "resolved", SubstituteEnvVars("${SYNCBASE_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${SYNCBASE_TEST_UNSET:fallback}"))
	assert.Equal(t, "", SubstituteEnvVars("${SYNCBASE_TEST_UNSET}"))
	assert.Equal(t, "plain", SubstituteEnvVars("plain"))
}

func TestSubstituteEnvVarsInConfig(t *testing.T) {
	t.Setenv("SYNCBASE_TEST_ADDR", ":9999")

	cfg := &Config{Transport: TransportConfig{ListenAddr: "${SYNCBASE_TEST_ADDR}"}}
	SubstituteEnvVarsInConfig(cfg)
	assert.Equal(t, ":9999", cfg.Transport.ListenAddr)

	SubstituteEnvVarsInConfig(nil) // must not panic
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("SYNCBASE_ENV", "Staging")
	assert.Equal(t, "staging", GetEnvironment())
	assert.False(t, IsProduction())
	assert.False(t, IsDevelopment())
}
