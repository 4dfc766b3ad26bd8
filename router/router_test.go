package router

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/internal/logger"
	"github.com/qalbehabib/syncbase/logstream"
	"github.com/qalbehabib/syncbase/logstream/memlog"
	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/memory"
)

func testLogger() logger.Logger {
	return logger.NewLogger(discard{}, logger.ErrorLevel)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newRouter(t *testing.T, kp *crypto.KeyPair) (*Router, *memlog.Log, *view.View) {
	t.Helper()
	writer := logstream.WriterKey(kp.PublicKey())
	l := memlog.New(writer)
	v := view.New(memory.New())
	r := New(l, v, memory.New(), testLogger())
	return r, l, v
}

func appendAction(t *testing.T, l *memlog.Log, kp *crypto.KeyPair, typ codec.ActionType, payload map[string]interface{}) {
	t.Helper()
	env, err := crypto.CreateSignedAction(kp, typ.TypeString(), payload)
	require.NoError(t, err)
	require.NoError(t, l.Append(context.Background(), *env))
}

func TestRouterCreateServerGrantsOwner(t *testing.T) {
	ctx := context.Background()
	kp, err := crypto.DeriveKeyPair("owner-phrase")
	require.NoError(t, err)
	r, l, v := newRouter(t, kp)

	appendAction(t, l, kp, codec.CreateServer, map[string]interface{}{"id": "s1", "name": "General"})

	require.NoError(t, r.RunOnce(ctx))

	srv, err := v.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "General", srv.Name)

	signerHex := hex.EncodeToString(kp.PublicKey())
	role, err := v.GetRole(ctx, signerHex)
	require.NoError(t, err)
	assert.Equal(t, view.RoleOwner, role.Role)
}

func TestRouterDedupSkipsReplayedEntry(t *testing.T) {
	ctx := context.Background()
	kp, err := crypto.DeriveKeyPair("owner-phrase")
	require.NoError(t, err)
	r, l, v := newRouter(t, kp)

	appendAction(t, l, kp, codec.CreateServer, map[string]interface{}{"id": "s1", "name": "General", "timestamp": int64(1000)})
	require.NoError(t, r.RunOnce(ctx))

	// re-adopt the same entry as if it arrived again via gossip.
	snap := l.Snapshot()
	require.Len(t, snap, 1)
	l.Adopt(snap)

	require.NoError(t, r.RunOnce(ctx))

	srv, err := v.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "General", srv.Name)
}

func TestRouterPartitionsChannelBeforeMessage(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-phrase-2")
	require.NoError(t, err)
	r, l, v := newRouter(t, owner)

	appendAction(t, l, owner, codec.CreateServer, map[string]interface{}{"id": "s1", "name": "General", "timestamp": int64(1)})
	require.NoError(t, r.RunOnce(ctx))

	// within a single batch, append the message before its channel;
	// partition order must still apply the channel first.
	appendAction(t, l, owner, codec.SendMessage, map[string]interface{}{
		"id": "m1", "channelId": "c1", "author": hex.EncodeToString(owner.PublicKey()),
		"content": "hi", "timestamp": int64(10),
	})
	appendAction(t, l, owner, codec.CreateChannel, map[string]interface{}{
		"id": "c1", "channelId": "c1", "name": "general", "type": "TEXT",
		"createdBy": hex.EncodeToString(owner.PublicKey()), "createdAt": int64(5), "timestamp": int64(5),
	})

	require.NoError(t, r.RunOnce(ctx))

	ch, err := v.GetChannel(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "general", ch.Name)

	msg, err := v.GetMessage(ctx, "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)
}

func TestRouterCreateChannelRefusesNameCollision(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-phrase-3")
	require.NoError(t, err)
	r, l, v := newRouter(t, owner)

	appendAction(t, l, owner, codec.CreateServer, map[string]interface{}{"id": "s1", "name": "General", "timestamp": int64(1)})
	appendAction(t, l, owner, codec.CreateChannel, map[string]interface{}{
		"id": "c1", "channelId": "c1", "name": "general", "type": "TEXT",
		"createdBy": hex.EncodeToString(owner.PublicKey()), "createdAt": int64(2), "timestamp": int64(2),
	})
	appendAction(t, l, owner, codec.CreateChannel, map[string]interface{}{
		"id": "c2", "channelId": "c2", "name": "general", "type": "TEXT",
		"createdBy": hex.EncodeToString(owner.PublicKey()), "createdAt": int64(3), "timestamp": int64(3),
	})

	require.NoError(t, r.RunOnce(ctx))

	_, err = v.GetChannel(ctx, "c1")
	require.NoError(t, err)
	_, err = v.GetChannel(ctx, "c2")
	assert.ErrorIs(t, err, view.ErrNotFound)
}

func TestRouterClaimInviteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-phrase-4")
	require.NoError(t, err)
	r, l, v := newRouter(t, owner)

	appendAction(t, l, owner, codec.CreateServer, map[string]interface{}{"id": "s1", "name": "General", "timestamp": int64(1)})
	require.NoError(t, r.RunOnce(ctx))

	inviteID := []byte{0xaa, 0xbb}
	serverID := "s1"
	require.NoError(t, v.CreateInvite(ctx, &view.Invite{ID: inviteID, ServerID: &serverID, Expires: 0}))
	require.NoError(t, v.Flush(ctx))

	claimant, err := crypto.DeriveKeyPair("claimant-phrase")
	require.NoError(t, err)
	claimantHex := hex.EncodeToString(claimant.PublicKey())
	claimPayload := map[string]interface{}{
		"id": claimantHex, "publicKey": claimantHex, "username": "bob",
		"joinedAt": int64(100), "code": hex.EncodeToString(inviteID), "timestamp": int64(100),
	}

	appendAction(t, l, claimant, codec.ClaimInvite, claimPayload)
	require.NoError(t, r.RunOnce(ctx))

	role, err := v.GetRole(ctx, claimantHex)
	require.NoError(t, err)
	assert.Equal(t, view.RoleMember, role.Role)

	// claim arrives a second time (e.g. re-gossiped); idempotent no-op.
	appendAction(t, l, claimant, codec.ClaimInvite, claimPayload)
	require.NoError(t, r.RunOnce(ctx))

	role, err = v.GetRole(ctx, claimantHex)
	require.NoError(t, err)
	assert.Equal(t, view.RoleMember, role.Role)
}
