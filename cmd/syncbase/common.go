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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/qalbehabib/syncbase/config"
	"github.com/qalbehabib/syncbase/instance"
	"github.com/qalbehabib/syncbase/internal/logger"
	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/postgres"
)

// defaultAwaitTimeout bounds how long a one-shot subcommand waits for
// its optimistic append to reach the View before reporting success.
const defaultAwaitTimeout = 2 * time.Second

// loadConfig resolves the active environment's Config from configDir.
// An empty env defers to config.Load's own SYNCBASE_ENV/ENVIRONMENT
// detection.
func loadConfig(env string) (*config.Config, error) {
	return config.Load(config.LoaderOptions{ConfigDir: configDir, Environment: env})
}

// parseLevel maps a config string to a logger.Level, defaulting to Info
// on anything unrecognized.
func parseLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

// newStore builds the view.Store cfg.Storage names.
func newStore(ctx context.Context, cfg *config.Config) (view.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pc := cfg.Storage.Postgres
		return postgres.New(ctx, &postgres.Config{
			Host:     pc.Host,
			Port:     pc.Port,
			User:     pc.User,
			Password: pc.Password,
			Database: pc.Database,
			SSLMode:  pc.SSLMode,
		})
	default:
		return nil, nil // instance.Open defaults to view/memory when Store is nil
	}
}

// openInstance wires a config.Config into a running instance.Instance
// using the same component choices `syncbase serve` uses, so every
// subcommand observes the same storage this process is configured for.
func openInstance(ctx context.Context, cfg *config.Config) (*instance.Instance, error) {
	if cfg.Instance.Phrase == "" {
		return nil, fmt.Errorf("instance.phrase is not set; run `syncbase init` first")
	}

	lg := logger.NewLogger(os.Stdout, parseLevel(cfg.Logging.Level))

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return instance.Open(cfg.Instance.Phrase, instance.Options{
		Store:         store,
		Logger:        lg,
		ApplyInterval: cfg.Instance.ApplyInterval(),
	})
}

// awaitFlush blocks until the apply loop has flushed at least once
// since it was called, or timeout elapses — giving a one-shot CLI
// command's optimistic append a chance to land in the View before the
// process reads it back or exits.
func awaitFlush(in *instance.Instance, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	before := in.HealthCheck().LastFlushedAt
	for time.Now().Before(deadline) {
		if in.HealthCheck().LastFlushedAt != before {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
