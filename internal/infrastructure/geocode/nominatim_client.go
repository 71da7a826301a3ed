package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// MaxCandidates 1回の検索で返す候補の最大数
const MaxCandidates = 5

// NominatimClient はOpenStreetMap Nominatimを使った場所検索の実装
type NominatimClient struct {
	baseURL     string
	countryCode string
	language    string
	httpClient  *http.Client
}

// NewNominatimClient は新しいクライアントを生成する
// countryCodeは検索対象の国コード（空の場合は全世界）
func NewNominatimClient(baseURL, countryCode, language string) *NominatimClient {
	return &NominatimClient{
		baseURL:     baseURL,
		countryCode: countryCode,
		language:    language,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search は自由入力テキストから場所の候補を最大5件返す
func (n *NominatimClient) Search(ctx context.Context, query string) ([]model.PlaceCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.PlaceCandidate{}, nil
	}

	// 1. APIリクエストURLを構築
	reqURL, err := n.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "SpotMap-App/1.0")
	if n.language != "" {
		req.Header.Set("Accept-Language", n.language+",en")
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	// 3. JSONレスポンスをパース
	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	// 4. ドメインモデルに変換して返す
	candidates := make([]model.PlaceCandidate, 0, len(places))
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lng, lngErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lngErr != nil || !helper.IsValidCoordinate(lat, lng) {
			log.Printf("⚠️ 座標を解析できない検索結果をスキップ: %q", p.DisplayName)
			continue
		}
		candidates = append(candidates, model.PlaceCandidate{
			DisplayName: p.DisplayName,
			Lat:         round6(lat),
			Lng:         round6(lng),
			Type:        p.Type,
		})
		if len(candidates) == MaxCandidates {
			break
		}
	}
	return candidates, nil
}

func (n *NominatimClient) buildURL(query string) (string, error) {
	base, err := url.Parse(n.baseURL)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(MaxCandidates))
	if n.countryCode != "" {
		params.Set("countrycodes", n.countryCode)
	}
	base.RawQuery = params.Encode()
	return base.String(), nil
}

// round6 は座標を小数点以下6桁に丸める
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// --- Nominatim APIのレスポンスをパースするための構造体 ---

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}
