package repository

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
)

// FirestoreReportRepository Firestoreのコレクションにスポットを保存するリポジトリ
type FirestoreReportRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreReportRepository 新しいFirestoreReportRepositoryインスタンスを作成
func NewFirestoreReportRepository(client *firestore.Client, collection string) *FirestoreReportRepository {
	return &FirestoreReportRepository{
		client:     client,
		collection: collection,
	}
}

var _ repository.RemoteReportRepository = (*FirestoreReportRepository)(nil)

func (r *FirestoreReportRepository) Name() string {
	return "firestore"
}

// List 全スポットを createdAt の降順で取得
func (r *FirestoreReportRepository) List(ctx context.Context) ([]model.Report, error) {
	iter := r.client.Collection(r.collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var reports []model.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("スポットデータの取得に失敗しました: %w", err)
		}
		report, err := decodeSnapshot(doc)
		if err != nil {
			log.Printf("⚠️ 不正なスポットドキュメントをスキップ: %v", err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Insert ドキュメントIDをスポットIDとして保存する
func (r *FirestoreReportRepository) Insert(ctx context.Context, report model.Report) (model.Report, error) {
	if _, err := r.client.Collection(r.collection).Doc(report.ID).Set(ctx, report); err != nil {
		log.Printf("❌ Failed to save spot %s: %v", report.ID, err)
		return model.Report{}, fmt.Errorf("スポットの保存に失敗しました: %w", err)
	}
	log.Printf("✅ Spot saved: %s", report.ID)
	return report, nil
}

// Update 指定フィールドのみ更新する（存在しないドキュメントはエラー）
func (r *FirestoreReportRepository) Update(ctx context.Context, id string, patch model.ReportPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}

	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if _, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("スポットが見つかりません: %s", id)
		}
		return fmt.Errorf("スポットの更新に失敗しました: %w", err)
	}
	return nil
}

// decodeSnapshot ドキュメントを検証済みのReportに変換する
func decodeSnapshot(doc *firestore.DocumentSnapshot) (model.Report, error) {
	data := doc.Data()
	if data == nil {
		return model.Report{}, fmt.Errorf("ドキュメント %s にデータがありません", doc.Ref.ID)
	}
	if _, ok := data["id"]; !ok {
		data["id"] = doc.Ref.ID
	}
	return helper.DecodeReportRow(data)
}
