package synclog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() }) //nolint:errcheck
	return l
}

func TestStartComplete(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "brownsville")
	require.NoError(t, err)
	require.NoError(t, l.Complete(ctx, id, 1234))

	entries, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "brownsville", entries[0].Dataset)
	assert.Equal(t, "complete", entries[0].Status)
	assert.Equal(t, int64(1234), entries[0].RowsSynced)
	assert.NotNil(t, entries[0].CompletedAt)
	assert.Empty(t, entries[0].Error)
}

func TestFail(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "brownsville")
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, "remote unavailable"))

	entries, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "remote unavailable", entries[0].Error)
}

func TestLastSuccess(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	last, err := l.LastSuccess(ctx, "brownsville")
	require.NoError(t, err)
	assert.Nil(t, last, "never-synced dataset has no last success")

	id, err := l.Start(ctx, "brownsville")
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, "boom"))

	last, err = l.LastSuccess(ctx, "brownsville")
	require.NoError(t, err)
	assert.Nil(t, last, "failed runs do not count")

	id, err = l.Start(ctx, "brownsville")
	require.NoError(t, err)
	require.NoError(t, l.Complete(ctx, id, 10))

	last, err = l.LastSuccess(ctx, "brownsville")
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestListAllMostRecentFirst(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	first, err := l.Start(ctx, "brownsville")
	require.NoError(t, err)
	second, err := l.Start(ctx, "brownsville")
	require.NoError(t, err)

	entries, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, first, entries[1].ID)
}
