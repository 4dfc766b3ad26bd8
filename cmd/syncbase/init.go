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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qalbehabib/syncbase/config"
)

var (
	initServerName string
	initEnv        string
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a fresh config file and initialize the server",
	Long: `init derives a new random writer phrase, writes it into
config/<env>.yaml alongside the rest of the default configuration, and
prints it — the phrase must be kept to rejoin this instance's identity
on a future "syncbase serve" (spec §4.1: "same phrase always yields
the same keypair").`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initServerName, "name", "My Server", "server name passed to Initialize")
	initCmd.Flags().StringVar(&initEnv, "env", "default", "environment file to write under config-dir")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(configDir, initEnv+".yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	}

	phrase, err := randomPhrase()
	if err != nil {
		return fmt.Errorf("generate phrase: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := config.SaveToFile(&config.Config{Instance: config.InstanceConfig{Phrase: phrase}}, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("reload written config: %w", err)
	}

	ctx := cmd.Context()
	in, err := openInstance(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open instance: %w", err)
	}
	defer in.Close()

	if err := in.Initialize(ctx, initServerName, nil); err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	awaitFlush(in, defaultAwaitTimeout)

	fmt.Printf("wrote %s\n", path)
	fmt.Printf("writer phrase: %s\n", phrase)
	fmt.Println("keep this phrase secret; it is the only way to resume this instance's identity.")
	return nil
}

func randomPhrase() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
