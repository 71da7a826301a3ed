package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
)

// firestoreRetryInterval スナップショットリスナーが切断された後の再接続間隔
const firestoreRetryInterval = 5 * time.Second

// FirestoreChangeFeed コレクションのスナップショットリスナーで変更を購読する
type FirestoreChangeFeed struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreChangeFeed(client *firestore.Client, collection string) repository.ChangeFeed {
	return &FirestoreChangeFeed{
		client:     client,
		collection: collection,
	}
}

// Subscribe 変更を ChangeEvent に変換して流す
// 接続（再接続を含む）ごとの最初のスナップショットは resync として流し、全件を読み直させる
func (f *FirestoreChangeFeed) Subscribe(ctx context.Context) (<-chan model.ChangeEvent, error) {
	events := make(chan model.ChangeEvent, 16)

	go func() {
		defer close(events)
		log.Printf("📡 Firestoreの変更を購読開始: %s", f.collection)

		for reconnect := false; ; reconnect = true {
			if reconnect {
				select {
				case <-ctx.Done():
					return
				case <-time.After(firestoreRetryInterval):
				}
			}
			if err := f.listen(ctx, events); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️ Firestoreのスナップショットリスナーが切断されました: %v", err)
				continue
			}
			return
		}
	}()

	return events, nil
}

// listen スナップショットイテレータが終了するまで変更を流す
func (f *FirestoreChangeFeed) listen(ctx context.Context, events chan<- model.ChangeEvent) error {
	iter := f.client.Collection(f.collection).Snapshots(ctx)
	defer iter.Stop()

	first := true
	for {
		snap, err := iter.Next()
		if err != nil {
			return err
		}
		for _, event := range snapshotEvents(first, snap.Changes) {
			if !send(ctx, events, event) {
				return ctx.Err()
			}
		}
		first = false
	}
}

// snapshotEvents スナップショットの変更をイベント列に変換する
// 最初のスナップショットは購読開始前の変更を取りこぼさないよう resync 1件にまとめる
func snapshotEvents(first bool, changes []firestore.DocumentChange) []model.ChangeEvent {
	if first {
		return []model.ChangeEvent{{Op: model.ChangeResync}}
	}
	events := make([]model.ChangeEvent, 0, len(changes))
	for _, change := range changes {
		if event, ok := toChangeEvent(change); ok {
			events = append(events, event)
		}
	}
	return events
}

func toChangeEvent(change firestore.DocumentChange) (model.ChangeEvent, bool) {
	switch change.Kind {
	case firestore.DocumentRemoved:
		return model.ChangeEvent{Op: model.ChangeDelete, ID: change.Doc.Ref.ID}, true
	case firestore.DocumentAdded, firestore.DocumentModified:
		report, err := decodeSnapshot(change.Doc)
		if err != nil {
			log.Printf("⚠️ 不正なスポットドキュメントの変更を無視: %v", err)
			return model.ChangeEvent{}, false
		}
		op := model.ChangeUpdate
		if change.Kind == firestore.DocumentAdded {
			op = model.ChangeInsert
		}
		return model.ChangeEvent{Op: op, Report: report, ID: report.ID}, true
	default:
		return model.ChangeEvent{}, false
	}
}

// send ctxが終了していなければイベントを送信する
func send(ctx context.Context, events chan<- model.ChangeEvent, event model.ChangeEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
