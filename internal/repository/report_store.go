package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
	"SpotMap-App/internal/infrastructure/localstore"
)

// NewReportStore 起動時の設定に応じてストアを選択する
// remoteがnilの場合はローカルスナップショットのみを使う
func NewReportStore(remote repository.RemoteReportRepository, snapshot *localstore.SnapshotStore) repository.ReportStore {
	if remote == nil {
		return &localReportStore{snapshot: snapshot}
	}
	return &remoteReportStore{remote: remote, snapshot: snapshot}
}

// remoteReportStore リモートバックエンド + ローカルスナップショット（フォールバック用）
type remoteReportStore struct {
	remote   repository.RemoteReportRepository
	snapshot *localstore.SnapshotStore
}

func (s *remoteReportStore) Mode() string {
	return "remote:" + s.remote.Name()
}

// LoadAll リモートから読み込み、失敗時はローカルスナップショットにフォールバックする
// 成功時はローカルにしかない投稿を再送し、送れなかったものも結果とスナップショットに残す
func (s *remoteReportStore) LoadAll(ctx context.Context) ([]model.Report, error) {
	reports, err := s.remote.List(ctx)
	if err != nil {
		log.Printf("⚠️ %s からの読み込みに失敗、ローカルスナップショットを使用します: %v", s.remote.Name(), err)
		return loadSnapshot(s.snapshot)
	}

	if reports == nil {
		reports = []model.Report{}
	}
	reports = s.resendPending(ctx, reports)
	if err := s.snapshot.Save(reports); err != nil {
		log.Printf("⚠️ ローカルスナップショットの更新に失敗: %v", err)
	}
	return reports, nil
}

// resendPending 未送信の投稿をリモートへ送り、送れなかったものをreportsの先頭に加える
func (s *remoteReportStore) resendPending(ctx context.Context, reports []model.Report) []model.Report {
	pending, err := s.snapshot.Pending()
	if err != nil {
		log.Printf("⚠️ 未送信投稿の読み込みに失敗: %v", err)
		return reports
	}
	if len(pending) == 0 {
		return reports
	}

	remoteIDs := make(map[string]bool, len(reports))
	for _, r := range reports {
		remoteIDs[r.ID] = true
	}

	var sent []string
	var local []model.Report
	for _, r := range pending {
		if remoteIDs[r.ID] {
			sent = append(sent, r.ID)
			continue
		}
		saved, err := s.remote.Insert(ctx, r)
		if err != nil {
			log.Printf("⚠️ 未送信投稿の再送に失敗、ローカルに残します: %s: %v", r.ID, err)
			local = append(local, r)
			continue
		}
		sent = append(sent, r.ID)
		local = append(local, helper.SanitizeReport(saved))
	}
	if err := s.snapshot.ClearPending(sent); err != nil {
		log.Printf("⚠️ 未送信記録の更新に失敗: %v", err)
	}
	if len(sent) > 0 {
		log.Printf("✅ 未送信投稿 %d件を %s に送信しました", len(sent), s.remote.Name())
	}

	merged := make([]model.Report, 0, len(local)+len(reports))
	merged = append(merged, local...)
	return append(merged, reports...)
}

// Create リモートに保存し、失敗時はローカルスナップショットに保存する
// どちらの場合も描画可能なレコードを返す
func (s *remoteReportStore) Create(ctx context.Context, draft model.Report) (model.Report, error) {
	report, err := prepareDraft(draft)
	if err != nil {
		return model.Report{}, err
	}

	saved, err := s.remote.Insert(ctx, report)
	if err != nil {
		log.Printf("⚠️ %s への保存に失敗、ローカルに保存します: %v", s.remote.Name(), err)
		if err := s.snapshot.Prepend(report); err != nil {
			log.Printf("❌ ローカルスナップショットへの保存に失敗: %v", err)
		}
		if err := s.snapshot.MarkPending(report); err != nil {
			log.Printf("❌ 未送信投稿の記録に失敗: %v", err)
		}
		return report, nil
	}

	saved = helper.SanitizeReport(saved)
	if err := s.snapshot.Prepend(saved); err != nil {
		log.Printf("⚠️ ローカルスナップショットの更新に失敗: %v", err)
	}
	return saved, nil
}

// Update リモートのみ更新する（失敗時はfalse、リトライしない）
func (s *remoteReportStore) Update(ctx context.Context, id string, patch model.ReportPatch) bool {
	patch = sanitizePatch(patch)
	if err := s.remote.Update(ctx, id, patch); err != nil {
		log.Printf("⚠️ %s の更新に失敗: %v", s.remote.Name(), err)
		return false
	}
	if _, err := s.snapshot.Patch(id, patch); err != nil && !errors.Is(err, localstore.ErrSnapshotNotFound) {
		log.Printf("⚠️ ローカルスナップショットの更新に失敗: %v", err)
	}
	return true
}

// localReportStore ローカルスナップショットのみを使うストア
type localReportStore struct {
	snapshot *localstore.SnapshotStore
}

func (s *localReportStore) Mode() string {
	return "local"
}

func (s *localReportStore) LoadAll(ctx context.Context) ([]model.Report, error) {
	return loadSnapshot(s.snapshot)
}

func (s *localReportStore) Create(ctx context.Context, draft model.Report) (model.Report, error) {
	report, err := prepareDraft(draft)
	if err != nil {
		return model.Report{}, err
	}
	if err := s.snapshot.Prepend(report); err != nil {
		log.Printf("❌ ローカルスナップショットへの保存に失敗: %v", err)
	}
	return report, nil
}

func (s *localReportStore) Update(ctx context.Context, id string, patch model.ReportPatch) bool {
	found, err := s.snapshot.Patch(id, sanitizePatch(patch))
	if err != nil {
		log.Printf("⚠️ ローカルスナップショットの更新に失敗: %v", err)
		return false
	}
	return found
}

func loadSnapshot(snapshot *localstore.SnapshotStore) ([]model.Report, error) {
	reports, err := snapshot.Load()
	if err != nil {
		if !errors.Is(err, localstore.ErrSnapshotNotFound) {
			log.Printf("⚠️ ローカルスナップショットの読み込みに失敗: %v", err)
		}
		return nil, repository.ErrNoReports
	}
	return reports, nil
}

// prepareDraft IDと作成日時が未設定なら採番し、カウンタを正規化する
func prepareDraft(draft model.Report) (model.Report, error) {
	if strings.TrimSpace(draft.ID) == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return model.Report{}, fmt.Errorf("IDの生成に失敗: %w", err)
		}
		draft.ID = id.String()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now()
	}
	return helper.SanitizeReport(draft), nil
}

// sanitizePatch パッチ内のカウンタを正規化する
func sanitizePatch(patch model.ReportPatch) model.ReportPatch {
	if patch.Likes != nil {
		likes := helper.SanitizeCount(*patch.Likes)
		patch.Likes = &likes
	}
	if patch.Dislikes != nil {
		dislikes := helper.SanitizeCount(*patch.Dislikes)
		patch.Dislikes = &dislikes
	}
	return patch
}
