package validator

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/memory"
)

func newTestView(t *testing.T) *view.View {
	t.Helper()
	return view.New(memory.New())
}

func signedAction(t *testing.T, kp *crypto.KeyPair, actionType string, payload map[string]interface{}) *crypto.Envelope {
	t.Helper()
	env, err := crypto.CreateSignedAction(kp, actionType, payload)
	require.NoError(t, err)
	return env
}

func TestValidateCreateServer(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)
	kp, err := crypto.DeriveKeyPair("owner-phrase")
	require.NoError(t, err)

	env := signedAction(t, kp, codec.CreateServer.TypeString(), map[string]interface{}{
		"id": "s1", "name": "General",
	})
	a := &Action{Envelope: env, Type: codec.CreateServer, Payload: &codec.ServerPayload{ID: "s1", Name: "General"}}

	ok, err := Validate(ctx, a, v)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, v.CreateServer(ctx, &view.Server{ID: "s1", Name: "General"}))
	require.NoError(t, v.Flush(ctx))

	ok, err = Validate(ctx, a, v)
	require.NoError(t, err)
	assert.False(t, ok, "a second create-server must be rejected")
}

func TestValidateSendMessageRequiresPermission(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)
	kp, err := crypto.DeriveKeyPair("member-phrase")
	require.NoError(t, err)
	signer := kp.PublicKey()

	require.NoError(t, v.CreateChannel(ctx, &view.Channel{ChannelID: "c1", Name: "general"}))
	require.NoError(t, v.Flush(ctx))

	env := signedAction(t, kp, codec.SendMessage.TypeString(), map[string]interface{}{
		"id": "m1", "channelId": "c1", "content": "hi",
	})
	payload := &codec.MessagePayload{ID: "m1", ChannelID: "c1", Content: "hi", Timestamp: 1}
	a := &Action{Envelope: env, Type: codec.SendMessage, Payload: payload}

	ok, err := Validate(ctx, a, v)
	require.NoError(t, err)
	assert.False(t, ok, "a signer with no role has no SEND_MESSAGES permission")

	require.NoError(t, v.SetRole(ctx, &view.Role{UserID: hexKey(signer), ServerID: "s1", Role: view.RoleMember, UpdatedBy: "owner"}))
	require.NoError(t, v.Flush(ctx))

	ok, err = Validate(ctx, a, v)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateEditMessageRequiresAuthorship(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)
	author, err := crypto.DeriveKeyPair("author-phrase")
	require.NoError(t, err)
	other, err := crypto.DeriveKeyPair("other-phrase")
	require.NoError(t, err)

	require.NoError(t, v.CreateMessage(ctx, &view.Message{ID: "m1", ChannelID: "c1", Author: hexKey(author.PublicKey()), Content: "hi"}))
	require.NoError(t, v.Flush(ctx))

	payload := &codec.MessagePayload{ID: "m1", ChannelID: "c1", Content: "edited"}

	env := signedAction(t, author, codec.EditMessage.TypeString(), map[string]interface{}{"id": "m1", "channelId": "c1", "content": "edited"})
	ok, err := Validate(ctx, &Action{Envelope: env, Type: codec.EditMessage, Payload: payload}, v)
	require.NoError(t, err)
	assert.True(t, ok)

	env2 := signedAction(t, other, codec.EditMessage.TypeString(), map[string]interface{}{"id": "m1", "channelId": "c1", "content": "edited"})
	ok, err = Validate(ctx, &Action{Envelope: env2, Type: codec.EditMessage, Payload: payload}, v)
	require.NoError(t, err)
	assert.False(t, ok, "only the original author may edit")
}

func TestValidateSetRoleAuthority(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)
	owner, err := crypto.DeriveKeyPair("owner-phrase")
	require.NoError(t, err)
	admin, err := crypto.DeriveKeyPair("admin-phrase")
	require.NoError(t, err)

	require.NoError(t, v.CreateServer(ctx, &view.Server{ID: "s1", Name: "General"}))
	require.NoError(t, v.SetRole(ctx, &view.Role{UserID: hexKey(owner.PublicKey()), Role: view.RoleOwner}))
	require.NoError(t, v.SetRole(ctx, &view.Role{UserID: hexKey(admin.PublicKey()), Role: view.RoleAdmin}))
	require.NoError(t, v.Flush(ctx))

	payload := &codec.RolePayload{UserID: "target", Role: view.RoleAdmin}
	env := signedAction(t, admin, codec.SetRole.TypeString(), map[string]interface{}{"userId": "target", "role": view.RoleAdmin})
	ok, err := Validate(ctx, &Action{Envelope: env, Type: codec.SetRole, Payload: payload}, v)
	require.NoError(t, err)
	assert.False(t, ok, "an ADMIN may not promote to ADMIN")

	payload2 := &codec.RolePayload{UserID: "target", Role: view.RoleModerator}
	env2 := signedAction(t, admin, codec.SetRole.TypeString(), map[string]interface{}{"userId": "target", "role": view.RoleModerator})
	ok, err = Validate(ctx, &Action{Envelope: env2, Type: codec.SetRole, Payload: payload2}, v)
	require.NoError(t, err)
	assert.True(t, ok, "an ADMIN may set MODERATOR")

	envOwner := signedAction(t, owner, codec.SetRole.TypeString(), map[string]interface{}{"userId": "target", "role": view.RoleAdmin})
	ok, err = Validate(ctx, &Action{Envelope: envOwner, Type: codec.SetRole, Payload: payload}, v)
	require.NoError(t, err)
	assert.True(t, ok, "an OWNER may set any role")
}

func TestValidateRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)
	kp, err := crypto.DeriveKeyPair("owner-phrase")
	require.NoError(t, err)

	env := signedAction(t, kp, codec.CreateServer.TypeString(), map[string]interface{}{"id": "s1", "name": "General"})
	env.Signature[0] ^= 0xff

	ok, err := Validate(ctx, &Action{Envelope: env, Type: codec.CreateServer, Payload: &codec.ServerPayload{ID: "s1", Name: "General"}}, v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOptimisticClaimInviteSkipsSignature(t *testing.T) {
	ctx := context.Background()
	v := newTestView(t)

	require.NoError(t, v.CreateInvite(ctx, &view.Invite{ID: []byte{0xab, 0xcd}, Expires: 1000}))
	require.NoError(t, v.Flush(ctx))

	payload := &codec.UserPayload{ID: "newuser", InviteCode: strp("abcd"), JoinedAt: 500}
	a := &Action{
		Envelope:   &crypto.Envelope{Type: codec.ClaimInvite.TypeString(), Signature: []byte("garbage")},
		Type:       codec.ClaimInvite,
		Payload:    payload,
		Optimistic: true,
	}

	ok, err := Validate(ctx, a, v)
	require.NoError(t, err)
	assert.True(t, ok)
}

func strp(s string) *string { return &s }

func hexKey(pub []byte) string { return hex.EncodeToString(pub) }
