package repository

import (
	"context"

	"SpotMap-App/internal/domain/model"
)

// PlaceSearcher 自由入力テキストから場所の候補を検索する外部サービス
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]model.PlaceCandidate, error)
}
