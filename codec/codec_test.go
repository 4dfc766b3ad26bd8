package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func TestActionTypeRoundTrip(t *testing.T) {
	for tag, s := range typeStrings {
		got, ok := ActionTypeFromString(s)
		require.True(t, ok)
		assert.Equal(t, tag, got)
	}

	_, ok := ActionTypeFromString("@server/not-a-real-action")
	assert.False(t, ok)
}

func TestServerPayloadRoundTrip(t *testing.T) {
	want := &ServerPayload{
		ID:          "srv1",
		Name:        "General",
		CreatedAt:   1700000000000,
		Description: strPtr("a place to talk"),
	}
	data, err := Encode(CreateServer, want)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CreateServer, tag)
	assert.Equal(t, want, payload)
}

func TestChannelPayloadRoundTrip(t *testing.T) {
	want := &ChannelPayload{
		ID:        "evt1",
		ChannelID: "chan1",
		Name:      "general",
		Type:      "text",
		CreatedBy: "user1",
		CreatedAt: 1700000001000,
		Position:  3,
	}
	data, err := Encode(CreateChannel, want)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CreateChannel, tag)
	assert.Equal(t, want, payload)
}

func TestMessagePayloadRoundTripWithAttachments(t *testing.T) {
	want := &MessagePayload{
		ID:          "msg1",
		ChannelID:   "chan1",
		Author:      "user1",
		Content:     "hello",
		Timestamp:   1700000002000,
		Attachments: []string{"https://example.com/a.png", "https://example.com/b.png"},
	}
	data, err := Encode(SendMessage, want)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SendMessage, tag)
	assert.Equal(t, want, payload)
}

func TestMessagePayloadRoundTripEdit(t *testing.T) {
	want := &MessagePayload{
		ID:        "msg1",
		ChannelID: "chan1",
		Author:    "user1",
		Content:   "hello edited",
		Timestamp: 1700000002000,
		EditedAt:  i64Ptr(1700000003000),
	}
	data, err := Encode(EditMessage, want)
	require.NoError(t, err)

	_, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, want, payload)
}

func TestRolePayloadRoundTrip(t *testing.T) {
	want := &RolePayload{
		UserID:    "user1",
		ServerID:  "srv1",
		Role:      "admin",
		UpdatedAt: 1700000004000,
		UpdatedBy: "user-owner",
	}
	data, err := Encode(SetRole, want)
	require.NoError(t, err)

	_, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, want, payload)
}

func TestInvitePayloadRoundTrip(t *testing.T) {
	want := &InvitePayload{
		ID:        []byte{0x01, 0x02, 0x03, 0x04},
		Invite:    []byte{0xaa, 0xbb},
		PublicKey: []byte{0xde, 0xad, 0xbe, 0xef},
		Expires:   1700003600000,
		ServerID:  strPtr("srv1"),
		CreatedBy: strPtr("user1"),
	}
	data, err := Encode(CreateInvite, want)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CreateInvite, tag)
	assert.Equal(t, want, payload)
}

func TestUserPayloadRoundTrip(t *testing.T) {
	want := &UserPayload{
		ID:         "user2",
		PublicKey:  "abcd1234",
		Username:   "alice",
		JoinedAt:   1700000005000,
		InviteCode: strPtr("CODE123"),
	}
	data, err := Encode(ClaimInvite, want)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ClaimInvite, tag)
	assert.Equal(t, want, payload)
}

func TestDecodeUnknownActionType(t *testing.T) {
	_, _, err := Decode([]byte{0xff, 0x00})
	assert.ErrorIs(t, err, ErrUnknownActionType)
}

func TestDecodeEmptyPayload(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	data, err := Encode(CreateServer, &ServerPayload{ID: "a", Name: "b", CreatedAt: 1})
	require.NoError(t, err)

	_, _, err = Decode(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestEncodeWrongPayloadType(t *testing.T) {
	_, err := Encode(CreateServer, &ChannelPayload{})
	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestEncodeUnknownActionType(t *testing.T) {
	_, err := Encode(ActionType(99), &ServerPayload{})
	assert.ErrorIs(t, err, ErrUnknownActionType)
}
