package wsrelay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/logstream"
	"github.com/qalbehabib/syncbase/logstream/memlog"
)

func TestGossipPropagatesAppendedEntry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logA := memlog.New(logstream.WriterKey([]byte{0xaa}))
	relayA := New(logA)
	serverA := httptest.NewServer(relayA.Handler())
	defer serverA.Close()

	logB := memlog.New(logstream.WriterKey([]byte{0xbb}))
	relayB := New(logB)

	wsURL := "ws" + strings.TrimPrefix(serverA.URL, "http")
	require.NoError(t, relayB.Dial(ctx, wsURL))

	require.NoError(t, logA.Append(ctx, crypto.Envelope{Type: "@server/create-server"}))

	go relayA.Pump(ctx, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(logB.Snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "@server/create-server", logB.Snapshot()[0].Value.Type)
}
