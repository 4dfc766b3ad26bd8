package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalbehabib/syncbase/view"
)

func TestInsertGetFind(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, "channel", "c1", view.Row{"name": "general", "position": 0}))
	require.NoError(t, s.Insert(ctx, "channel", "c2", view.Row{"name": "random", "position": 1}))

	row, err := s.Get(ctx, "channel", "c1")
	require.NoError(t, err)
	assert.Equal(t, "general", row["name"])

	rows, err := s.Find(ctx, "channel", view.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "general", rows[0]["name"]) // key order: c1 before c2

	match, err := s.FindOne(ctx, "channel", view.Query{"name": "random"})
	require.NoError(t, err)
	assert.Equal(t, "random", match["name"])
}

func TestInsertConflict(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, "server", "s1", view.Row{"name": "a"}))
	err := s.Insert(ctx, "server", "s1", view.Row{"name": "b"})
	assert.ErrorIs(t, err, view.ErrPrimaryKeyConflict)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Delete(ctx, "server", "missing"))
	require.NoError(t, s.Insert(ctx, "server", "s1", view.Row{"name": "a"}))
	require.NoError(t, s.Delete(ctx, "server", "s1"))
	require.NoError(t, s.Delete(ctx, "server", "s1"))

	_, err := s.Get(ctx, "server", "s1")
	assert.ErrorIs(t, err, view.ErrNotFound)
}

func TestReadsOwnWriteBeforeFlush(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, "role", "u1", view.Row{"role": "OWNER"}))
	row, err := s.Get(ctx, "role", "u1")
	require.NoError(t, err)
	assert.Equal(t, "OWNER", row["role"])

	require.NoError(t, s.Flush(ctx))
	row, err = s.Get(ctx, "role", "u1")
	require.NoError(t, err)
	assert.Equal(t, "OWNER", row["role"])
}

func TestFlushAppliesTombstonesAtomically(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, "channel", "c1", view.Row{"name": "general"}))
	require.NoError(t, s.Flush(ctx))

	require.NoError(t, s.Delete(ctx, "channel", "c1"))
	require.NoError(t, s.Insert(ctx, "channel", "c2", view.Row{"name": "random"}))

	rows, err := s.Find(ctx, "channel", view.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "random", rows[0]["name"])

	require.NoError(t, s.Flush(ctx))
	_, err = s.Get(ctx, "channel", "c1")
	assert.ErrorIs(t, err, view.ErrNotFound)
}
