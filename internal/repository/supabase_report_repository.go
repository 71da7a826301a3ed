package repository

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
	"SpotMap-App/internal/infrastructure/database"
)

type SupabaseReportRepository struct {
	client *database.SupabaseClient
	table  string
}

func NewSupabaseReportRepository(client *database.SupabaseClient, table string) repository.RemoteReportRepository {
	return &SupabaseReportRepository{
		client: client,
		table:  table,
	}
}

func (r *SupabaseReportRepository) Name() string {
	return "supabase"
}

// List 全スポットを createdAt の降順で取得
func (r *SupabaseReportRepository) List(ctx context.Context) ([]model.Report, error) {
	data, _, err := r.client.GetClient().From(r.table).
		Select("*", "exact", false).
		Order("createdAt", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("スポットデータの取得失敗: %w", err)
	}

	reports, err := helper.DecodeReportRows(data)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Insert 1件挿入し、保存された行を返す
func (r *SupabaseReportRepository) Insert(ctx context.Context, report model.Report) (model.Report, error) {
	data, _, err := r.client.GetClient().From(r.table).
		Insert(report, false, "", "representation", "").
		Execute()
	if err != nil {
		return model.Report{}, fmt.Errorf("スポットデータの作成失敗: %w", err)
	}

	saved, err := helper.DecodeReportRows(data)
	if err != nil || len(saved) == 0 {
		// 保存自体は成功しているため送信した内容を返す
		return report, nil
	}
	return saved[0], nil
}

// Update IDを指定して部分更新
func (r *SupabaseReportRepository) Update(ctx context.Context, id string, patch model.ReportPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	_, _, err := r.client.GetClient().From(r.table).
		Update(patch.Fields(), "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("スポットデータの更新失敗: %w", err)
	}
	return nil
}
