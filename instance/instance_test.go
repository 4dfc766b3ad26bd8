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

package instance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/internal/logger"
	"github.com/qalbehabib/syncbase/invite"
	"github.com/qalbehabib/syncbase/pairing"
	"github.com/qalbehabib/syncbase/syncerr"
	"github.com/qalbehabib/syncbase/validator"
	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/memory"
)

// expireToken decodes token and re-encodes it with an expiry one
// minute in the past, so ClaimInvite's expiry check is exercised
// without waiting out a real invite's lifetime.
func expireToken(t *testing.T, token string) string {
	t.Helper()
	id, publicKey, _, err := invite.DecodeToken(token)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute).UnixMilli()
	return invite.EncodeToken(id, publicKey, past)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() logger.Logger {
	return logger.NewLogger(discard{}, logger.ErrorLevel)
}

func openTestInstance(t *testing.T, phrase string) *Instance {
	t.Helper()
	in, err := Open(phrase, Options{Logger: testLogger(), ApplyInterval: 5 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })
	return in
}

// openSharedInstance opens an instance whose View sits on top of the
// same store/processedStore as other instances opened against the
// same pair, so one instance's applied rows (a channel, a role grant)
// are immediately visible to another's reads without any real
// replication — each instance still appends to, and replays from, its
// own log.
func openSharedInstance(t *testing.T, phrase string, store, processedStore view.Store) *Instance {
	t.Helper()
	in, err := Open(phrase, Options{
		Store:          store,
		ProcessedStore: processedStore,
		Logger:         testLogger(),
		ApplyInterval:  5 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })
	return in
}

// waitUntil polls cond every 5ms until it reports true or timeout
// elapses, the way the apply loop's async settling is observed
// throughout this package's tests.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestInstance_SoloInit(t *testing.T) {
	ctx := context.Background()
	in := openTestInstance(t, "solo-phrase")

	require.NoError(t, in.Initialize(ctx, "My Server", nil))

	waitUntil(t, time.Second, func() bool {
		_, err := in.GetServerInfo(ctx)
		return err == nil
	})

	srv, err := in.GetServerInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My Server", srv.Name)

	ok, err := in.HasPermission(ctx, validator.PermManageChannels)
	require.NoError(t, err)
	assert.True(t, ok, "the initializer is granted the owner role with every permission")
}

func TestInstance_ChannelAndMessage(t *testing.T) {
	ctx := context.Background()
	in := openTestInstance(t, "channel-phrase")
	require.NoError(t, in.Initialize(ctx, "General HQ", nil))
	waitUntil(t, time.Second, func() bool {
		_, err := in.GetServerInfo(ctx)
		return err == nil
	})

	topic := "general discussion"
	channelID, err := in.CreateChannel(ctx, "general", "text", &topic)
	require.NoError(t, err)
	require.NotEmpty(t, channelID)

	waitUntil(t, time.Second, func() bool {
		cs, err := in.ListChannels(ctx)
		return err == nil && len(cs) == 1
	})

	channel, err := in.GetChannel(ctx, channelID)
	require.NoError(t, err)
	assert.Equal(t, "general", channel.Name)
	require.NotNil(t, channel.Topic)
	assert.Equal(t, topic, *channel.Topic)

	msgID, err := in.SendMessage(ctx, channelID, "hello, syncbase", nil)
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	waitUntil(t, time.Second, func() bool {
		msgs, err := in.GetMessages(ctx, channelID)
		return err == nil && len(msgs) == 1
	})

	msgs, err := in.GetMessages(ctx, channelID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello, syncbase", msgs[0].Content)
	assert.Equal(t, in.SignerHex(), msgs[0].Author)
}

// TestInstance_PermissionGate exercises spec §8 scenario 4: a signer
// with no role on the server is rejected synchronously, before the
// action is ever appended to the log.
func TestInstance_PermissionGate(t *testing.T) {
	ctx := context.Background()
	in := openTestInstance(t, "owner-phrase")
	require.NoError(t, in.Initialize(ctx, "Guarded Server", nil))
	waitUntil(t, time.Second, func() bool {
		_, err := in.GetServerInfo(ctx)
		return err == nil
	})

	bystander := openTestInstance(t, "bystander-phrase")
	// bystander shares no log with in, so its view never learns a
	// role for its own signer key — HasPermission reports false and
	// SendMessage must fail before anything is appended.
	_, err := bystander.SendMessage(ctx, "nonexistent-channel", "hi", nil)
	require.Error(t, err)

	var syncErr *syncerr.Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, syncerr.KindUnauthorized, syncErr.Kind)
}

// TestInstance_AdminManageChannels exercises spec §4.4: ADMIN carries
// MANAGE_CHANNELS and so may update and delete channels, even though
// only OWNER carries DELETE_CHANNEL individually — the
// validator gates both operations on MANAGE_CHANNELS alone, and the
// public API's pre-check must mirror that exactly rather than reject
// a legitimate ADMIN caller before the action ever reaches the log.
func TestInstance_AdminManageChannels(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	processedStore := memory.New()

	owner := openSharedInstance(t, "admin-owner-phrase", store, processedStore)
	require.NoError(t, owner.Initialize(ctx, "Admin Server", nil))
	waitUntil(t, time.Second, func() bool {
		_, err := owner.GetServerInfo(ctx)
		return err == nil
	})

	channelID, err := owner.CreateChannel(ctx, "general", "text", nil)
	require.NoError(t, err)
	waitUntil(t, time.Second, func() bool {
		_, err := owner.GetChannel(ctx, channelID)
		return err == nil
	})

	admin := openSharedInstance(t, "admin-deputy-phrase", store, processedStore)
	require.NoError(t, owner.SetRole(ctx, admin.SignerHex(), view.RoleAdmin))
	waitUntil(t, time.Second, func() bool {
		ok, err := admin.HasPermission(ctx, validator.PermManageChannels)
		return err == nil && ok
	})

	// ADMIN has MANAGE_CHANNELS and EDIT_CHANNEL but, per the closed
	// role table, not DELETE_CHANNEL — both calls must
	// still succeed because the validator (and the pre-check) gate on
	// MANAGE_CHANNELS alone.
	newName := "renamed-by-admin"
	require.NoError(t, admin.UpdateChannel(ctx, channelID, &newName, nil, nil))
	waitUntil(t, time.Second, func() bool {
		c, err := admin.GetChannel(ctx, channelID)
		return err == nil && c.Name == newName
	})

	require.NoError(t, admin.DeleteChannel(ctx, channelID))
	waitUntil(t, time.Second, func() bool {
		cs, err := owner.ListChannels(ctx)
		return err == nil && len(cs) == 0
	})
}

// TestInstance_InviteJoinAdmit exercises spec §4.6's full claim flow:
// the owner mints an invite, a candidate joins over an in-process
// pipe transport, and the admitting side resolves and accepts it.
func TestInstance_InviteJoinAdmit(t *testing.T) {
	ctx := context.Background()
	owner := openTestInstance(t, "invite-owner-phrase")
	require.NoError(t, owner.Initialize(ctx, "Invite Server", nil))
	waitUntil(t, time.Second, func() bool {
		_, err := owner.GetServerInfo(ctx)
		return err == nil
	})

	inv, err := owner.CreateInvite(ctx, 60)
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)

	candidate := openTestInstance(t, "invite-candidate-phrase")

	candidateTr, ownerTr := pairing.NewPipeTransportPair()

	admitResult := make(chan error, 1)
	go func() {
		_, _, err := owner.Admit(ctx, ownerTr)
		admitResult <- err
	}()

	_, claimedInv, err := candidate.Join(ctx, candidateTr, inv.Token, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, claimedInv.ID)
	require.NoError(t, <-admitResult)
}

// TestInstance_ExpiredInvite exercises spec §8 scenario 5: a token
// minted with a past expiry is rejected with KindExpired.
func TestInstance_ExpiredInvite(t *testing.T) {
	ctx := context.Background()
	owner := openTestInstance(t, "expiring-owner-phrase")
	require.NoError(t, owner.Initialize(ctx, "Expiring Server", nil))
	waitUntil(t, time.Second, func() bool {
		_, err := owner.GetServerInfo(ctx)
		return err == nil
	})

	inv, err := owner.CreateInvite(ctx, 60)
	require.NoError(t, err)

	candidate := openTestInstance(t, "expiring-candidate-phrase")
	expiredToken := expireToken(t, inv.Token)

	_, err = candidate.ClaimInvite(ctx, expiredToken, "toolate")
	require.Error(t, err)

	var syncErr *syncerr.Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, syncerr.KindExpired, syncErr.Kind)
}
