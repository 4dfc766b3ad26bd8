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

var messageAttachments []string

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Send messages",
}

var messageSendCmd = &cobra.Command{
	Use:   "send <channel-id> <content>",
	Short: "Append send-message and print the projected message id",
	Args:  cobra.ExactArgs(2),
	RunE:  runMessageSend,
}

func init() {
	rootCmd.AddCommand(messageCmd)
	messageCmd.AddCommand(messageSendCmd)

	messageSendCmd.Flags().StringSliceVar(&messageAttachments, "attachment", nil, "attachment reference, repeatable")
}

func runMessageSend(cmd *cobra.Command, args []string) error {
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

	id, err := in.SendMessage(ctx, args[0], args[1], messageAttachments)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	awaitFlush(in, defaultAwaitTimeout)

	fmt.Printf("message id: %s\n", id)
	return nil
}
