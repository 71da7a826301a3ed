package localstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// ErrSnapshotNotFound ローカルスナップショットが存在しない、または読み取れない
var ErrSnapshotNotFound = errors.New("ローカルスナップショットがありません")

const (
	// SnapshotFileName DATA_DIR配下のスナップショットファイル名
	SnapshotFileName = "spots.snapshot"
	// PendingFileName リモート未送信の投稿を記録するファイル名
	PendingFileName = "pending_spots.snapshot"
)

// SnapshotStore スポット一覧のローカルスナップショットと未送信投稿の記録
type SnapshotStore struct {
	mu          sync.Mutex
	path        string
	pendingPath string
}

// NewSnapshotStore dataDir配下にスナップショットを保存するストアを作成
func NewSnapshotStore(dataDir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("データディレクトリの作成に失敗: %w", err)
	}
	return &SnapshotStore{
		path:        filepath.Join(dataDir, SnapshotFileName),
		pendingPath: filepath.Join(dataDir, PendingFileName),
	}, nil
}

// Path スナップショットファイルのパス
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load スナップショットを読み込む
// ファイルがない場合、または内容を解析できない場合はErrSnapshotNotFound
func (s *SnapshotStore) Load() ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save スナップショットを丸ごと置き換える
func (s *SnapshotStore) Save(reports []model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(reports)
}

// Prepend スポットを先頭に追加する（同じIDが既にあれば置き換えずに何もしない）
func (s *SnapshotStore) Prepend(report model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadLocked()
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		return err
	}
	if helper.FindByID(reports, report.ID) >= 0 {
		return nil
	}
	next := make([]model.Report, 0, len(reports)+1)
	next = append(next, report)
	next = append(next, reports...)
	return s.saveLocked(next)
}

// Patch 指定IDのスポットに部分更新を適用する（見つからない場合false）
func (s *SnapshotStore) Patch(id string, patch model.ReportPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	index := helper.FindByID(reports, id)
	if index < 0 {
		return false, nil
	}
	patch.ApplyTo(&reports[index])
	if err := s.saveLocked(reports); err != nil {
		return false, err
	}
	return true, nil
}

// MarkPending リモートに保存できなかった投稿を記録する
func (s *SnapshotStore) MarkPending(report model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.readLocked(s.pendingPath)
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		return err
	}
	if helper.FindByID(pending, report.ID) >= 0 {
		return nil
	}
	return s.writeLocked(s.pendingPath, append(pending, report))
}

// Pending 未送信の投稿を記録順に返す（記録がなければ空）
func (s *SnapshotStore) Pending() ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.readLocked(s.pendingPath)
	if errors.Is(err, ErrSnapshotNotFound) {
		return []model.Report{}, nil
	}
	return pending, err
}

// ClearPending 送信済みになった投稿を記録から外す
func (s *SnapshotStore) ClearPending(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.readLocked(s.pendingPath)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil
		}
		return err
	}
	cleared := make(map[string]bool, len(ids))
	for _, id := range ids {
		cleared[id] = true
	}
	kept := make([]model.Report, 0, len(pending))
	for _, r := range pending {
		if !cleared[r.ID] {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		if err := os.Remove(s.pendingPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("未送信記録の削除に失敗: %w", err)
		}
		return nil
	}
	return s.writeLocked(s.pendingPath, kept)
}

func (s *SnapshotStore) loadLocked() ([]model.Report, error) {
	return s.readLocked(s.path)
}

func (s *SnapshotStore) readLocked(path string) ([]model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("スナップショットの読み込みに失敗: %w", err)
	}

	reports, err := DecodeReports(string(data))
	if err != nil {
		log.Printf("⚠️ スナップショットを解析できないため無視します: %v", err)
		return nil, ErrSnapshotNotFound
	}
	return reports, nil
}

func (s *SnapshotStore) saveLocked(reports []model.Report) error {
	return s.writeLocked(s.path, reports)
}

func (s *SnapshotStore) writeLocked(path string, reports []model.Report) error {
	text, err := EncodeReports(reports)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(text))
}

// writeFileAtomic は一時ファイルに書き込んでからrenameで置き換える
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルへの書き込みに失敗: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルのクローズに失敗: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ファイルの置き換えに失敗: %w", err)
	}
	return nil
}
