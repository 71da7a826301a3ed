package repository

import (
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
)

func removedChange(id string) firestore.DocumentChange {
	return firestore.DocumentChange{
		Kind: firestore.DocumentRemoved,
		Doc:  &firestore.DocumentSnapshot{Ref: &firestore.DocumentRef{ID: id}},
	}
}

func TestSnapshotEvents(t *testing.T) {
	t.Run("最初のスナップショットはresyncになる", func(t *testing.T) {
		events := snapshotEvents(true, []firestore.DocumentChange{removedChange("a"), removedChange("b")})
		require.Len(t, events, 1)
		assert.Equal(t, model.ChangeResync, events[0].Op)
	})

	t.Run("空の最初のスナップショットでもresyncになる", func(t *testing.T) {
		events := snapshotEvents(true, nil)
		require.Len(t, events, 1)
		assert.Equal(t, model.ChangeResync, events[0].Op)
	})

	t.Run("以降の変更は到着順にイベントになる", func(t *testing.T) {
		events := snapshotEvents(false, []firestore.DocumentChange{removedChange("a"), removedChange("b")})
		require.Len(t, events, 2)
		assert.Equal(t, model.ChangeDelete, events[0].Op)
		assert.Equal(t, "a", events[0].TargetID())
		assert.Equal(t, "b", events[1].TargetID())
	})
}
