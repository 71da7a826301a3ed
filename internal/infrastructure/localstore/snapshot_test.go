package localstore

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
)

func TestSnapshotStore_MissingFile(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotStore_UnparseableIsTreatedAsAbsent(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not a snapshot"), 0o644))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save([]model.Report{sampleReport("a")}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ID)
}

func TestSnapshotStore_Prepend(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Prepend(sampleReport("a")))
	require.NoError(t, store.Prepend(sampleReport("b")))

	dup := sampleReport("a")
	dup.Likes = 50
	require.NoError(t, store.Prepend(dup))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "b", loaded[0].ID)
	assert.Equal(t, "a", loaded[1].ID)
	assert.Equal(t, 2, loaded[1].Likes)
}

func TestSnapshotStore_Patch(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Patch("a", model.ReportPatch{})
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, store.Save([]model.Report{sampleReport("a")}))

	likes, active := 9, false
	ok, err := store.Patch("a", model.ReportPatch{Likes: &likes, IsActive: &active})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Patch("missing", model.ReportPatch{Likes: &likes})
	require.NoError(t, err)
	assert.False(t, ok)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, loaded[0].Likes)
	assert.False(t, loaded[0].IsActive)
}

func TestSnapshotStore_Pending(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	pending, err := store.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	a := model.Report{ID: "a", Name: "A", CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	b := model.Report{ID: "b", Name: "B", CreatedAt: time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)}
	require.NoError(t, store.MarkPending(a))
	require.NoError(t, store.MarkPending(b))
	require.NoError(t, store.MarkPending(a))

	pending, err = store.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "b", pending[1].ID)

	require.NoError(t, store.ClearPending([]string{"a"}))
	pending, err = store.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].ID)

	require.NoError(t, store.ClearPending([]string{"b"}))
	pending, err = store.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
