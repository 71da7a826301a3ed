package localstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// EncodeReports はスポット一覧をスナップショット用のテキスト（UTF-8 JSONのbase64）に変換する
func EncodeReports(reports []model.Report) (string, error) {
	if reports == nil {
		reports = []model.Report{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return "", fmt.Errorf("スナップショットのJSONマーシャル失敗: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeReports はスナップショットのテキストをスポット一覧に戻す
// 各行はDecodeReportRowで検証され、カウンタはサニタイズされる
func DecodeReports(text string) ([]model.Report, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("スナップショットのbase64デコード失敗: %w", err)
	}
	return helper.DecodeReportRows(data)
}
