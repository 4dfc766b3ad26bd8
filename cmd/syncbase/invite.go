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

var inviteExpiresMinutes int
var claimUsername string

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Create and claim invites",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a new invite and append create-invite",
	RunE:  runInviteCreate,
}

var inviteClaimCmd = &cobra.Command{
	Use:   "claim <token>",
	Short: "Claim an invite token and append claim-invite",
	Args:  cobra.ExactArgs(1),
	RunE:  runInviteClaim,
}

func init() {
	rootCmd.AddCommand(inviteCmd)
	inviteCmd.AddCommand(inviteCreateCmd)
	inviteCmd.AddCommand(inviteClaimCmd)

	inviteCreateCmd.Flags().IntVar(&inviteExpiresMinutes, "expires-minutes", 60, "invite lifetime in minutes (0 = never expires)")
	inviteClaimCmd.Flags().StringVar(&claimUsername, "username", "", "display name to claim the invite under")
}

func runInviteCreate(cmd *cobra.Command, args []string) error {
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

	inv, err := in.CreateInvite(ctx, inviteExpiresMinutes)
	if err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	awaitFlush(in, defaultAwaitTimeout)

	fmt.Printf("invite token: %s\n", inv.Token)
	return nil
}

func runInviteClaim(cmd *cobra.Command, args []string) error {
	if claimUsername == "" {
		return fmt.Errorf("--username is required")
	}
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

	inv, err := in.ClaimInvite(ctx, args[0], claimUsername)
	if err != nil {
		return fmt.Errorf("claim invite: %w", err)
	}
	awaitFlush(in, defaultAwaitTimeout)

	fmt.Printf("claimed invite %x as %s\n", inv.ID, claimUsername)
	return nil
}
