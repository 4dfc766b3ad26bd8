package view_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/memory"
)

func newTestView() *view.View {
	return view.New(memory.New())
}

func TestServerLifecycle(t *testing.T) {
	ctx := context.Background()
	v := newTestView()

	ok, err := v.HasServer(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, v.CreateServer(ctx, &view.Server{ID: "s1", Name: "General", CreatedAt: 1}))
	require.NoError(t, v.Flush(ctx))

	ok, err = v.HasServer(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := v.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "General", got.Name)
}

func TestChannelUniqueNameLookup(t *testing.T) {
	ctx := context.Background()
	v := newTestView()

	require.NoError(t, v.CreateChannel(ctx, &view.Channel{ChannelID: "c1", Name: "general", Type: "TEXT"}))
	require.NoError(t, v.Flush(ctx))

	found, err := v.FindChannelByName(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "c1", found.ChannelID)

	_, err = v.FindChannelByName(ctx, "nope")
	assert.ErrorIs(t, err, view.ErrNotFound)
}

func TestMessageSoftDelete(t *testing.T) {
	ctx := context.Background()
	v := newTestView()

	require.NoError(t, v.CreateMessage(ctx, &view.Message{ID: "m1", ChannelID: "c1", Author: "u1", Content: "hi", Timestamp: 1}))
	require.NoError(t, v.Flush(ctx))

	msg, err := v.GetMessage(ctx, "c1", "m1")
	require.NoError(t, err)
	assert.Nil(t, msg.DeletedAt)

	deletedAt := int64(2)
	msg.DeletedAt = &deletedAt
	deletedBy := "u1"
	msg.DeletedBy = &deletedBy
	require.NoError(t, v.UpdateMessage(ctx, msg))
	require.NoError(t, v.Flush(ctx))

	again, err := v.GetMessage(ctx, "c1", "m1")
	require.NoError(t, err)
	require.NotNil(t, again.DeletedAt)
	assert.Equal(t, int64(2), *again.DeletedAt)
}

func TestInviteRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := newTestView()

	inv := &view.Invite{ID: []byte{1, 2, 3}, Invite: []byte{4, 5}, PublicKey: []byte{6, 7, 8, 9}, Expires: 1000}
	require.NoError(t, v.CreateInvite(ctx, inv))
	require.NoError(t, v.Flush(ctx))

	got, err := v.GetInvite(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, inv.Invite, got.Invite)
	assert.Equal(t, inv.PublicKey, got.PublicKey)
}

func TestRoleIsSingleton(t *testing.T) {
	ctx := context.Background()
	v := newTestView()

	require.NoError(t, v.SetRole(ctx, &view.Role{UserID: "u1", ServerID: "s1", Role: view.RoleMember, UpdatedAt: 1, UpdatedBy: "u1"}))
	require.NoError(t, v.Flush(ctx))
	require.NoError(t, v.SetRole(ctx, &view.Role{UserID: "u1", ServerID: "s1", Role: view.RoleAdmin, UpdatedAt: 2, UpdatedBy: "owner"}))
	require.NoError(t, v.Flush(ctx))

	role, err := v.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, view.RoleAdmin, role.Role)
}
