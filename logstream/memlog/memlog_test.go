package memlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/logstream"
)

func TestAppendAndReadBatch(t *testing.T) {
	ctx := context.Background()
	self := logstream.WriterKey([]byte{1, 2, 3})
	l := New(self)

	require.NoError(t, l.Append(ctx, crypto.Envelope{Type: "@server/create-server"}))
	require.NoError(t, l.Append(ctx, crypto.Envelope{Type: "@server/create-channel"}))

	batch, err := l.ReadBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "@server/create-server", batch[0].Value.Type)
	assert.Equal(t, self.Hex(), batch[0].From.Hex())

	// a second read with nothing new appended returns empty.
	batch, err = l.ReadBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestAdoptInterleavesWriters(t *testing.T) {
	ctx := context.Background()
	self := logstream.WriterKey([]byte{1})
	remote := logstream.WriterKey([]byte{2})
	l := New(self)

	require.NoError(t, l.Append(ctx, crypto.Envelope{Type: "a"}))
	l.Adopt([]logstream.Entry{
		{Value: crypto.Envelope{Type: "b"}, From: remote},
		{Value: crypto.Envelope{Type: "c"}, From: remote},
	})

	batch, err := l.ReadBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	writers := l.Writers()
	assert.Len(t, writers, 2)
}

func TestAck(t *testing.T) {
	self := logstream.WriterKey([]byte{9})
	l := New(self)
	require.NoError(t, l.Ack(self, 4))
	require.NoError(t, l.Ack(self, 2))
	assert.Equal(t, 5, l.acked[self.Hex()])
}
