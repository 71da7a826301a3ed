package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/service"
)

func TestDiffReports(t *testing.T) {
	a, b, c := storedReport("a"), storedReport("b"), storedReport("c")
	bUpdated := b
	bUpdated.Likes = 3

	prev := []model.Report{b, a}
	next := []model.Report{c, bUpdated}

	changes := DiffReports(prev, next)
	require.Len(t, changes, 3)
	assert.Equal(t, model.ChangeUpdate, changes[0].Op)
	assert.Equal(t, "b", changes[0].TargetID())
	assert.Equal(t, model.ChangeInsert, changes[1].Op)
	assert.Equal(t, "c", changes[1].TargetID())
	assert.Equal(t, model.ChangeDelete, changes[2].Op)
	assert.Equal(t, "a", changes[2].TargetID())

	// 差分を畳み込むと next と同じ並びになる
	set := prev
	for _, change := range changes {
		set = service.ApplyChange(set, change)
	}
	require.Len(t, set, 2)
	assert.Equal(t, "c", set[0].ID)
	assert.Equal(t, "b", set[1].ID)
	assert.Equal(t, 3, set[1].Likes)
}

func TestDiffReports_InsertOrder(t *testing.T) {
	next := []model.Report{storedReport("newest"), storedReport("middle"), storedReport("oldest")}

	var set []model.Report
	for _, change := range DiffReports(nil, next) {
		set = service.ApplyChange(set, change)
	}
	require.Len(t, set, 3)
	assert.Equal(t, "newest", set[0].ID)
	assert.Equal(t, "oldest", set[2].ID)
}

func TestDiffReports_NoChanges(t *testing.T) {
	rating := 4.0
	a := storedReport("a")
	a.Rating = &rating
	same := a
	sameRating := 4.0
	same.Rating = &sameRating

	assert.Empty(t, DiffReports([]model.Report{a}, []model.Report{same}))
}

func TestLocalChangeFeed_HandleFsEvent(t *testing.T) {
	snapshot := newSnapshot(t)
	feed := NewLocalChangeFeed(snapshot)

	require.NoError(t, snapshot.Save([]model.Report{storedReport("a")}))

	changes := feed.handleFsEvent(fsnotify.Event{Name: snapshot.Path(), Op: fsnotify.Write})
	require.Len(t, changes, 1)
	assert.Equal(t, model.ChangeInsert, changes[0].Op)

	// 内容が同じなら差分なし
	assert.Empty(t, feed.handleFsEvent(fsnotify.Event{Name: snapshot.Path(), Op: fsnotify.Create}))

	// 他のファイルや chmod は無視
	assert.Nil(t, feed.handleFsEvent(fsnotify.Event{Name: snapshot.Path() + ".tmp", Op: fsnotify.Write}))
	assert.Nil(t, feed.handleFsEvent(fsnotify.Event{Name: snapshot.Path(), Op: fsnotify.Chmod}))
}

func TestLocalChangeFeed_Subscribe(t *testing.T) {
	snapshot := newSnapshot(t)
	require.NoError(t, snapshot.Save([]model.Report{storedReport("a")}))

	ctx, cancel := context.WithCancel(context.Background())
	events, err := NewLocalChangeFeed(snapshot).Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, snapshot.Prepend(storedReport("b")))

	select {
	case event := <-events:
		assert.Equal(t, model.ChangeInsert, event.Op)
		assert.Equal(t, "b", event.TargetID())
	case <-time.After(5 * time.Second):
		t.Fatal("変更イベントが届きませんでした")
	}

	cancel()
	for range events {
	}
}
