package syncerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsByKind(t *testing.T) {
	err := New(KindExpired, "invite.Claim", errors.New("invite expired at t"))

	assert.True(t, errors.Is(err, Of(KindExpired)))
	assert.False(t, errors.Is(err, Of(KindNotFound)))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := New(KindInternal, "view.Flush", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestKindOf(t *testing.T) {
	err := New(KindConflict, "view.Insert", nil)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindConflict, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
