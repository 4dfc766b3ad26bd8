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

import "fmt"

// ValidationError names one invalid or suspect field found by Validate.
type ValidationError struct {
	Field   string
	Message string
	Level   string // "error" blocks Load; "warning" is merely logged
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"json": true, "text": true}
var validStorageDrivers = map[string]bool{"memory": true, "postgres": true}

// Validate checks cfg for structurally invalid or nonsensical values.
// Error-level findings should stop Load; warning-level ones are just
// surfaced to the operator.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if !validStorageDrivers[cfg.Storage.Driver] {
		errs = append(errs, ValidationError{
			Field: "storage.driver", Level: "error",
			Message: fmt.Sprintf("must be one of memory, postgres; got %q", cfg.Storage.Driver),
		})
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.Postgres.Database == "" {
		errs = append(errs, ValidationError{
			Field: "storage.postgres.database", Level: "error",
			Message: "required when storage.driver is postgres",
		})
	}

	if !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, ValidationError{
			Field: "logging.level", Level: "warning",
			Message: fmt.Sprintf("unrecognized level %q, falling back to info", cfg.Logging.Level),
		})
	}
	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, ValidationError{
			Field: "logging.format", Level: "warning",
			Message: fmt.Sprintf("unrecognized format %q, falling back to json", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535) {
		errs = append(errs, ValidationError{
			Field: "metrics.port", Level: "error",
			Message: fmt.Sprintf("invalid port %d", cfg.Metrics.Port),
		})
	}

	return errs
}
