package invite

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

func TestTokenRoundTrip(t *testing.T) {
	inv, _, err := Generate(30)
	require.NoError(t, err)

	id, pub, expires, err := DecodeToken(inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, id)
	assert.Equal(t, inv.PublicKey, pub)
	assert.Equal(t, inv.Expires, expires)
}

func TestTokenNeverExpires(t *testing.T) {
	inv, _, err := Generate(0)
	require.NoError(t, err)
	assert.Zero(t, inv.Expires)
}

func TestDecodeTokenRejectsWhitespace(t *testing.T) {
	_, _, _, err := DecodeToken("ab cd")
	assert.ErrorIs(t, err, ErrTokenWhitespace)
}

func TestDecodeTokenRejectsMalformed(t *testing.T) {
	_, _, _, err := DecodeToken("not-a-valid-token!!!")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestDecodeTokenRejectsWrongLength(t *testing.T) {
	short := tokenEncoding.EncodeToString([]byte("short"))
	_, _, _, err := DecodeToken(short)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

// fakeHost is a minimal Host for exercising Manager without the
// instance package.
type fakeHost struct {
	v      *view.View
	signer *crypto.KeyPair
}

func (f *fakeHost) AppendAction(ctx context.Context, actionType codec.ActionType, payload map[string]interface{}) error {
	payload["timestamp"] = crypto.NowMillis()
	m, err := dispatchApply(ctx, f.v, actionType, payload)
	_ = m
	return err
}

func (f *fakeHost) View() *view.View           { return f.v }
func (f *fakeHost) CurrentSigner() *crypto.KeyPair { return f.signer }

// dispatchApply mimics the router's handler call for the narrow set of
// actions this test exercises, since wiring the full router here would
// just duplicate router_test.go.
func dispatchApply(ctx context.Context, v *view.View, t codec.ActionType, payload map[string]interface{}) (bool, error) {
	p, err := codec.PayloadFromMap(t, payload)
	if err != nil {
		return false, err
	}
	switch t {
	case codec.CreateInvite:
		ip := p.(*codec.InvitePayload)
		return true, v.CreateInvite(ctx, &view.Invite{
			ID: ip.ID, Invite: ip.Invite, PublicKey: ip.PublicKey,
			Expires: ip.Expires, ServerID: ip.ServerID, CreatedBy: ip.CreatedBy,
		})
	case codec.RevokeInvite:
		ip := p.(*codec.InvitePayload)
		inv, err := v.GetInvite(ctx, ip.ID)
		if err != nil {
			return false, err
		}
		now := crypto.NowMillis()
		inv.RevokedAt = &now
		return true, v.UpdateInvite(ctx, inv)
	case codec.ClaimInvite:
		up := p.(*codec.UserPayload)
		return true, v.CreateUser(ctx, &view.User{ID: up.ID, PublicKey: up.PublicKey, Username: up.Username, JoinedAt: up.JoinedAt, InviteCode: up.InviteCode})
	default:
		return false, nil
	}
}

func TestManagerCreateThenLookup(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner")
	require.NoError(t, err)
	v := view.New(memory.New())
	host := &fakeHost{v: v, signer: owner}
	mgr := NewManager(host)

	inv, err := mgr.Create(ctx, nil, 30)
	require.NoError(t, err)
	require.NoError(t, v.Flush(ctx))

	active, err := mgr.IsActive(ctx, inv.ID, crypto.NowMillis())
	require.NoError(t, err)
	assert.True(t, active)
}

func TestManagerRevokeDeactivates(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-2")
	require.NoError(t, err)
	v := view.New(memory.New())
	host := &fakeHost{v: v, signer: owner}
	mgr := NewManager(host)

	inv, err := mgr.Create(ctx, nil, 30)
	require.NoError(t, err)
	require.NoError(t, v.Flush(ctx))

	require.NoError(t, mgr.Revoke(ctx, inv.ID))
	require.NoError(t, v.Flush(ctx))

	active, err := mgr.IsActive(ctx, inv.ID, crypto.NowMillis())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestManagerClaimAppendsAction(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-3")
	require.NoError(t, err)
	v := view.New(memory.New())
	host := &fakeHost{v: v, signer: owner}
	mgr := NewManager(host)

	inv, err := mgr.Create(ctx, nil, 30)
	require.NoError(t, err)
	require.NoError(t, v.Flush(ctx))

	claimant, err := crypto.DeriveKeyPair("claimant")
	require.NoError(t, err)
	_, err = mgr.Claim(ctx, inv.Token, claimant, "bob")
	require.NoError(t, err)
	require.NoError(t, v.Flush(ctx))

	has, err := v.HasUser(ctx, hexEncodePublic(claimant))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestManagerClaimRejectsExpired(t *testing.T) {
	ctx := context.Background()
	owner, err := crypto.DeriveKeyPair("owner-4")
	require.NoError(t, err)
	v := view.New(memory.New())
	host := &fakeHost{v: v, signer: owner}
	mgr := NewManager(host)

	token := EncodeToken(mustID(t), mustPublicKey(t), crypto.NowMillis()-1)
	claimant, err := crypto.DeriveKeyPair("claimant-2")
	require.NoError(t, err)
	_, err = mgr.Claim(ctx, token, claimant, "carol")
	assert.ErrorIs(t, err, ErrExpired)
}

func hexEncodePublic(kp *crypto.KeyPair) string {
	return hex.EncodeToString(kp.PublicKey())
}

func mustID(t *testing.T) []byte {
	t.Helper()
	b, err := crypto.GenerateIDBytes(idLen)
	require.NoError(t, err)
	return b
}

func mustPublicKey(t *testing.T) []byte {
	t.Helper()
	kp, err := crypto.NewEphemeralKeyPair()
	require.NoError(t, err)
	return kp.PublicKey()
}
