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
	"os"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "syncbase",
	Short: "syncbase - peer-to-peer group chat over a signed action log",
	Long: `syncbase runs and administers a single SyncBase instance: a
peer-to-peer, eventually-consistent group-chat server built on an
append-only, cryptographically-signed action log.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory holding environment config files")

	// Commands are registered in their respective files:
	// - init.go: initCmd
	// - serve.go: serveCmd
	// - invite.go: inviteCmd (create, claim)
	// - channel.go: channelCmd (create)
	// - message.go: messageCmd (send)
	// - version.go: versionCmd
}
