package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFromMapClaimInvite(t *testing.T) {
	m := map[string]interface{}{
		"id":        "user-1",
		"publicKey": "abcd",
		"username":  "alice",
		"joinedAt":  float64(1000),
		"code":      "abcd",
	}

	p, err := PayloadFromMap(ClaimInvite, m)
	require.NoError(t, err)

	up, ok := p.(*UserPayload)
	require.True(t, ok)
	assert.Equal(t, "user-1", up.ID)
	assert.Equal(t, int64(1000), up.JoinedAt)
	require.NotNil(t, up.InviteCode)
	assert.Equal(t, "abcd", *up.InviteCode)
}

func TestPayloadToMapRoundTrip(t *testing.T) {
	topic := "general"
	p := &ChannelPayload{
		ID:        "ch-1",
		ChannelID: "ch-1",
		Name:      "general",
		Type:      "TEXT",
		Topic:     &topic,
		CreatedBy: "user-1",
		CreatedAt: 1234,
		Position:  1,
	}

	m, err := PayloadToMap(p)
	require.NoError(t, err)
	assert.Equal(t, "ch-1", m["channelId"])
	assert.Equal(t, "general", m["topic"])

	back, err := PayloadFromMap(CreateChannel, m)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestPayloadFromMapUnknownType(t *testing.T) {
	_, err := PayloadFromMap(ActionType(99), map[string]interface{}{})
	require.Error(t, err)
}
