package helper

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"SpotMap-App/internal/domain/model"
)

// timestampLayouts はcreatedAtとして受け付ける文字列フォーマット
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp はcreatedAtの値（文字列・time.Time・エポックミリ秒）を日時に変換する
func ParseTimestamp(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("createdAtがnilです")
		}
		return *v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("createdAtの形式が不正です: %q", v)
	case float64, int64, int, json.Number:
		ms := toNumber(v)
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return time.Time{}, fmt.Errorf("createdAtの数値が不正です: %v", v)
		}
		return time.UnixMilli(int64(ms)), nil
	default:
		return time.Time{}, fmt.Errorf("createdAtの型が不正です: %T", value)
	}
}

// DecodeReportRow は永続化層から読み込んだ1行を検証・正規化してReportに変換する
func DecodeReportRow(row map[string]interface{}) (model.Report, error) {
	var r model.Report

	r.ID = stringField(row, "id")
	if r.ID == "" {
		return r, fmt.Errorf("idがありません")
	}

	lat, latOK := floatField(row, "lat")
	lng, lngOK := floatField(row, "lng")
	if !latOK || !lngOK || !IsValidCoordinate(lat, lng) {
		return r, fmt.Errorf("スポット %s の座標が不正です", r.ID)
	}
	r.Lat, r.Lng = lat, lng

	createdAt, err := ParseTimestamp(row["createdAt"])
	if err != nil {
		return r, fmt.Errorf("スポット %s: %w", r.ID, err)
	}
	r.CreatedAt = createdAt

	r.Name = stringField(row, "name")
	r.Address = stringField(row, "address")
	r.Description = stringField(row, "description")
	r.AddedBy = stringField(row, "addedBy")
	if r.AddedBy == "" {
		r.AddedBy = model.DefaultAddedBy
	}

	// 旧データはカテゴリ名をdescriptionに保存している
	category := stringField(row, "category")
	if category == "" {
		category = r.Description
	}
	r.Category = model.NormalizeCategory(category)

	r.IsActive = true
	if active, ok := row["isActive"].(bool); ok {
		r.IsActive = active
	}

	if rating, ok := floatField(row, "rating"); ok && !math.IsNaN(rating) && !math.IsInf(rating, 0) {
		r.Rating = &rating
	}

	r.Likes = SanitizeCount(row["likes"])
	r.Dislikes = SanitizeCount(row["dislikes"])

	return r, nil
}

// DecodeReportRows はJSON配列をReportのスライスに変換する
// 不正な行はログに出力してスキップする
func DecodeReportRows(data []byte) ([]model.Report, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("スポットデータのJSONアンマーシャル失敗: %w", err)
	}

	reports := make([]model.Report, 0, len(rows))
	for _, row := range rows {
		r, err := DecodeReportRow(row)
		if err != nil {
			log.Printf("⚠️ 不正なスポット行をスキップ: %v", err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// SanitizeReport はメモリ上のReportのカウンタ・カテゴリを正規化する
func SanitizeReport(r model.Report) model.Report {
	r.Likes = SanitizeCount(r.Likes)
	r.Dislikes = SanitizeCount(r.Dislikes)
	r.Category = model.NormalizeCategory(r.Category)
	if r.AddedBy == "" {
		r.AddedBy = model.DefaultAddedBy
	}
	return r
}

// IsValidCoordinate は緯度経度が有限かつ範囲内かチェックする
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CoordinateKey は座標を指定桁数で量子化したグループキーを返す
func CoordinateKey(lat, lng float64, precision int) string {
	return strconv.FormatFloat(lat, 'f', precision, 64) + "," + strconv.FormatFloat(lng, 'f', precision, 64)
}

// FilterByQuery は店名または住所に検索語を含むスポットのみを抽出する（大文字小文字を区別しない）
func FilterByQuery(reports []model.Report, query string) []model.Report {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return reports
	}
	var filtered []model.Report
	for _, r := range reports {
		if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Address), q) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FindByID はIDに一致するスポットのインデックスを返す（見つからない場合は-1）
func FindByID(reports []model.Report, id string) int {
	for i, r := range reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func stringField(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func floatField(row map[string]interface{}, key string) (float64, bool) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
