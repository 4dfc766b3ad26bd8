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
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qalbehabib/syncbase/internal/metrics"
)

var serveEnv string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run this instance's apply loop and pairing listener",
	Long: `serve opens the instance this process's config names, exposes
/metrics if enabled, and blocks until interrupted — the apply loop and
any Instance.AcceptPairings caller you wire in keep running in the
background (spec §4.5's apply loop, spec §4.6's admit flow).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveEnv, "env", "", "environment to load (defaults to SYNCBASE_ENV)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveEnv)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	in, err := openInstance(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open instance: %w", err)
	}
	defer in.Close()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		defer srv.Close()
		fmt.Printf("metrics listening on %s%s\n", srv.Addr, cfg.Metrics.Path)
	}

	fmt.Printf("instance %s serving (signer=%s)\n", cfg.Environment, in.SignerHex())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("shutting down")
	return nil
}
