package pairing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/invite"
)

func TestHandshakeDerivesMatchingKeys(t *testing.T) {
	ctx := context.Background()
	inv, inviteKP, err := invite.Generate(30)
	require.NoError(t, err)

	candidateTr, admitterTr := NewPipeTransportPair()

	resolve := func(ctx context.Context, id []byte) (*crypto.KeyPair, bool, error) {
		if string(id) != string(inv.ID) {
			return nil, false, nil
		}
		return inviteKP, true, nil
	}

	type admitResult struct {
		keys *SessionKeys
		id   []byte
		err  error
	}
	resultCh := make(chan admitResult, 1)
	go func() {
		keys, id, err := Admit(ctx, admitterTr, resolve)
		resultCh <- admitResult{keys, id, err}
	}()

	candidateKeys, gotInvite, err := Join(ctx, candidateTr, inv.Token)
	require.NoError(t, err)
	require.NotNil(t, candidateKeys)
	assert.Equal(t, inv.ID, gotInvite.ID)

	admitted := <-resultCh
	require.NoError(t, admitted.err)
	assert.Equal(t, inv.ID, admitted.id)

	assert.Equal(t, admitted.keys.ServerKey, candidateKeys.ServerKey)
	assert.Equal(t, admitted.keys.EncryptionKey, candidateKeys.EncryptionKey)
}

func TestAdmitRejectsUnknownInvite(t *testing.T) {
	ctx := context.Background()
	inv, _, err := invite.Generate(30)
	require.NoError(t, err)

	candidateTr, admitterTr := NewPipeTransportPair()

	resolve := func(ctx context.Context, id []byte) (*crypto.KeyPair, bool, error) { return nil, false, nil }

	type admitResult struct {
		err error
	}
	resultCh := make(chan admitResult, 1)
	go func() {
		_, _, err := Admit(ctx, admitterTr, resolve)
		resultCh <- admitResult{err}
	}()

	_, _, err = Join(ctx, candidateTr, inv.Token)
	assert.ErrorIs(t, err, ErrRejected)

	admitted := <-resultCh
	assert.ErrorIs(t, admitted.err, ErrRejected)
}

func TestJoinRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	id, pub, _, err := decodeGeneratedForTest()
	require.NoError(t, err)

	token := invite.EncodeToken(id, pub, 1) // expires=1ms since epoch, long past
	candidateTr, _ := NewPipeTransportPair()

	_, _, err = Join(ctx, candidateTr, token)
	assert.ErrorIs(t, err, invite.ErrExpired)
}

func decodeGeneratedForTest() (id, pub []byte, expires int64, err error) {
	inv, _, err := invite.Generate(30)
	if err != nil {
		return nil, nil, 0, err
	}
	return inv.ID, inv.PublicKey, inv.Expires, nil
}
