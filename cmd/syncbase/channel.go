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

	"github.com/spf13/cobra"
)

var (
	channelType  string
	channelTopic string
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage channels",
}

var channelCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Append create-channel and print the projected channel id",
	Args:  cobra.ExactArgs(1),
	RunE:  runChannelCreate,
}

func init() {
	rootCmd.AddCommand(channelCmd)
	channelCmd.AddCommand(channelCreateCmd)

	channelCreateCmd.Flags().StringVar(&channelType, "type", "text", "channel type")
	channelCreateCmd.Flags().StringVar(&channelTopic, "topic", "", "channel topic")
}

func runChannelCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	in, err := openInstance(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open instance: %w", err)
	}
	defer in.Close()

	var topic *string
	if channelTopic != "" {
		topic = &channelTopic
	}

	id, err := in.CreateChannel(ctx, args[0], channelType, topic)
	if err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	awaitFlush(in, defaultAwaitTimeout)

	fmt.Printf("channel id: %s\n", id)
	return nil
}
