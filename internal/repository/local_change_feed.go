package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/infrastructure/localstore"
)

// LocalChangeFeed ローカルスナップショットのファイル変更を監視し、差分をイベントとして流す
// 同じDATA_DIRを共有する別プロセスからの書き込みもこのフィードで反映される
type LocalChangeFeed struct {
	snapshot *localstore.SnapshotStore

	mu   sync.Mutex
	last []model.Report
}

func NewLocalChangeFeed(snapshot *localstore.SnapshotStore) *LocalChangeFeed {
	return &LocalChangeFeed{snapshot: snapshot}
}

// Subscribe スナップショットのディレクトリを監視する
// rename による置き換えでファイル単体の監視が外れるため、ディレクトリごと監視する
func (f *LocalChangeFeed) Subscribe(ctx context.Context) (<-chan model.ChangeEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ファイル監視の作成に失敗: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.snapshot.Path())); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("ディレクトリの監視に失敗: %w", err)
	}

	f.mu.Lock()
	f.last = f.loadCurrent()
	f.mu.Unlock()
	log.Printf("📡 ローカルスナップショットの監視を開始: %s", f.snapshot.Path())

	events := make(chan model.ChangeEvent, 16)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				for _, change := range f.handleFsEvent(event) {
					if !send(ctx, events, change) {
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ ファイル監視でエラー: %v", err)
			}
		}
	}()

	return events, nil
}

// handleFsEvent スナップショットファイルへの書き込みなら前回との差分を返す
func (f *LocalChangeFeed) handleFsEvent(event fsnotify.Event) []model.ChangeEvent {
	if filepath.Clean(event.Name) != filepath.Clean(f.snapshot.Path()) {
		return nil
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current := f.loadCurrent()
	changes := DiffReports(f.last, current)
	f.last = current
	return changes
}

func (f *LocalChangeFeed) loadCurrent() []model.Report {
	reports, err := f.snapshot.Load()
	if err != nil {
		if !errors.Is(err, localstore.ErrSnapshotNotFound) {
			log.Printf("⚠️ スナップショットの読み込みに失敗: %v", err)
		}
		return nil
	}
	return reports
}

// DiffReports 2つのスポット一覧の差分を ChangeEvent の列に変換する
// insert は next の末尾側から順に並べるため、先頭追加で畳み込むと next と同じ順序になる
func DiffReports(prev, next []model.Report) []model.ChangeEvent {
	prevByID := make(map[string]model.Report, len(prev))
	for _, r := range prev {
		prevByID[r.ID] = r
	}
	nextIDs := make(map[string]bool, len(next))
	for _, r := range next {
		nextIDs[r.ID] = true
	}

	var changes []model.ChangeEvent
	for i := len(next) - 1; i >= 0; i-- {
		r := next[i]
		old, existed := prevByID[r.ID]
		switch {
		case !existed:
			changes = append(changes, model.ChangeEvent{Op: model.ChangeInsert, Report: r, ID: r.ID})
		case !sameReport(old, r):
			changes = append(changes, model.ChangeEvent{Op: model.ChangeUpdate, Report: r, ID: r.ID})
		}
	}
	for _, r := range prev {
		if !nextIDs[r.ID] {
			changes = append(changes, model.ChangeEvent{Op: model.ChangeDelete, ID: r.ID})
		}
	}
	return changes
}

func sameReport(a, b model.Report) bool {
	if (a.Rating == nil) != (b.Rating == nil) {
		return false
	}
	if a.Rating != nil && *a.Rating != *b.Rating {
		return false
	}
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Address == b.Address &&
		a.Category == b.Category &&
		a.Description == b.Description &&
		a.AddedBy == b.AddedBy &&
		a.Lat == b.Lat &&
		a.Lng == b.Lng &&
		a.IsActive == b.IsActive &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.Likes == b.Likes &&
		a.Dislikes == b.Dislikes
}
