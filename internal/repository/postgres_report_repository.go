package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/lib/pq"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
	"SpotMap-App/internal/infrastructure/database"
)

// reportColumns SELECT / RETURNING で使うカラム（順序は scanReport と一致させる）
const reportColumns = `id, name, address, category, description, "addedBy", lat, lng, "isActive", rating, "createdAt", likes, dislikes`

type PostgresReportRepository struct {
	client  *database.PostgreSQLClient
	table   string
	postgis bool
}

func NewPostgresReportRepository(client *database.PostgreSQLClient, table string) *PostgresReportRepository {
	return &PostgresReportRepository{
		client: client,
		table:  table,
	}
}

var _ repository.RemoteReportRepository = (*PostgresReportRepository)(nil)

func (r *PostgresReportRepository) Name() string {
	return "postgres"
}

// NotifyChannel 変更通知の LISTEN/NOTIFY チャネル名
func (r *PostgresReportRepository) NotifyChannel() string {
	return NotifyChannelFor(r.table)
}

// NotifyChannelFor テーブル名から変更通知のチャネル名を返す
func NotifyChannelFor(table string) string {
	return table + "_changes"
}

// EnsureSchema テーブルと変更通知トリガーを作成する
// PostGISが使える場合は location カラムも追加する
func (r *PostgresReportRepository) EnsureSchema(ctx context.Context) error {
	db := r.client.DB
	table := pq.QuoteIdentifier(r.table)

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id text PRIMARY KEY,
		name text NOT NULL,
		address text NOT NULL DEFAULT '',
		category text NOT NULL DEFAULT 'other',
		description text NOT NULL DEFAULT '',
		"addedBy" text NOT NULL DEFAULT 'anonymous',
		lat double precision NOT NULL,
		lng double precision NOT NULL,
		"isActive" boolean NOT NULL DEFAULT true,
		rating double precision,
		"createdAt" timestamptz NOT NULL DEFAULT now(),
		likes integer NOT NULL DEFAULT 0,
		dislikes integer NOT NULL DEFAULT 0
	)`, table)
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("テーブルの作成に失敗: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS postgis`); err != nil {
		log.Printf("⚠️ PostGISが利用できないため location カラムなしで動作します: %v", err)
	} else {
		addLocation := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS location geography(Point, 4326)`, table)
		if _, err := db.ExecContext(ctx, addLocation); err != nil {
			return fmt.Errorf("locationカラムの追加に失敗: %w", err)
		}
		r.postgis = true
	}

	function := pq.QuoteIdentifier(r.table + "_notify_change")
	trigger := pq.QuoteIdentifier(r.table + "_notify_change_trigger")
	channel := pq.QuoteLiteral(r.NotifyChannel())

	createFunction := fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify(%s, json_build_object('op', 'delete', 'id', OLD.id)::text);
			RETURN OLD;
		END IF;
		PERFORM pg_notify(%s, json_build_object('op', lower(TG_OP), 'id', NEW.id, 'record', to_jsonb(NEW) - 'location')::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`, function, channel, channel)
	if _, err := db.ExecContext(ctx, createFunction); err != nil {
		return fmt.Errorf("通知関数の作成に失敗: %w", err)
	}

	dropTrigger := fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table)
	if _, err := db.ExecContext(ctx, dropTrigger); err != nil {
		return fmt.Errorf("既存トリガーの削除に失敗: %w", err)
	}
	createTrigger := fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
		FOR EACH ROW EXECUTE FUNCTION %s()`, trigger, table, function)
	if _, err := db.ExecContext(ctx, createTrigger); err != nil {
		return fmt.Errorf("トリガーの作成に失敗: %w", err)
	}

	log.Printf("✅ テーブル %s と変更通知トリガーを準備しました (PostGIS: %v)", r.table, r.postgis)
	return nil
}

// List 全スポットを createdAt の降順で取得
func (r *PostgresReportRepository) List(ctx context.Context) ([]model.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "createdAt" DESC`, reportColumns, pq.QuoteIdentifier(r.table))

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("スポットデータの取得失敗: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("行のスキャンに失敗: %w", err)
		}
		if !helper.IsValidCoordinate(report.Lat, report.Lng) {
			log.Printf("⚠️ 座標が不正なスポットをスキップ: %s", report.ID)
			continue
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行の読み込みに失敗: %w", err)
	}
	return reports, nil
}

// Insert 1件挿入し、保存された行を返す
func (r *PostgresReportRepository) Insert(ctx context.Context, report model.Report) (model.Report, error) {
	columns := `id, name, address, category, description, "addedBy", lat, lng, "isActive", rating, "createdAt", likes, dislikes`
	values := `$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13`
	args := []interface{}{
		report.ID, report.Name, report.Address, report.Category, report.Description, report.AddedBy,
		report.Lat, report.Lng, report.IsActive, nullableFloat(report.Rating), report.CreatedAt,
		report.Likes, report.Dislikes,
	}
	if r.postgis {
		columns += `, location`
		values += `, ST_GeomFromText($14, 4326)::geography`
		args = append(args, ReportLocationWKT(report))
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		pq.QuoteIdentifier(r.table), columns, values, reportColumns)

	saved, err := scanReport(r.client.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return model.Report{}, fmt.Errorf("スポットデータの作成失敗: %w", err)
	}
	return saved, nil
}

// Update IDを指定して部分更新
func (r *PostgresReportRepository) Update(ctx context.Context, id string, patch model.ReportPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names)+1)
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(name), i+1))
		args = append(args, fields[name])
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`,
		pq.QuoteIdentifier(r.table), strings.Join(sets, ", "), len(args))

	result, err := r.client.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("スポットデータの更新失敗: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("スポットID %s が見つかりません", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (model.Report, error) {
	var report model.Report
	var rating sql.NullFloat64
	err := row.Scan(
		&report.ID, &report.Name, &report.Address, &report.Category, &report.Description, &report.AddedBy,
		&report.Lat, &report.Lng, &report.IsActive, &rating, &report.CreatedAt,
		&report.Likes, &report.Dislikes,
	)
	if err != nil {
		return model.Report{}, err
	}
	if rating.Valid {
		value := rating.Float64
		report.Rating = &value
	}
	return helper.SanitizeReport(report), nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
