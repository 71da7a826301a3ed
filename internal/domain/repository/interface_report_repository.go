package repository

import (
	"context"
	"errors"

	"SpotMap-App/internal/domain/model"
)

// ErrNoReports リモートとローカルのどちらからもスポットを読み込めない
var ErrNoReports = errors.New("スポットデータが利用できません")

// ReportStore スポットの読み書き境界（リモート利用/ローカルのみの2実装を起動時に選択）
type ReportStore interface {
	// LoadAll 全スポットを作成日時の降順で取得（両方失敗時はErrNoReports）
	LoadAll(ctx context.Context) ([]model.Report, error)

	// Create IDと作成日時を採番して保存し、描画可能なレコードを返す
	Create(ctx context.Context, draft model.Report) (model.Report, error)

	// Update 部分更新（ベストエフォート、失敗時false）
	Update(ctx context.Context, id string, patch model.ReportPatch) bool

	// Mode "remote:<backend>" または "local"
	Mode() string
}

// RemoteReportRepository リモートバックエンド（Supabase / PostgreSQL / Firestore）
type RemoteReportRepository interface {
	// List 全スポットを作成日時の降順で取得
	List(ctx context.Context) ([]model.Report, error)

	// Insert 1件挿入し、保存された行を返す
	Insert(ctx context.Context, report model.Report) (model.Report, error)

	// Update IDを指定して部分更新
	Update(ctx context.Context, id string, patch model.ReportPatch) error

	// Name バックエンド名
	Name() string
}
