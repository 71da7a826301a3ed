package service

import (
	"sort"
	"time"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// ConfirmedLikesThreshold 「確認済み」とみなすいいね数
const ConfirmedLikesThreshold = 3

// zIndex の基準値
const (
	zIndexNewest  = 10000
	zIndexNewBase = 1000
)

// RankOptions 表示用データ生成のパラメータ
type RankOptions struct {
	Now           time.Time
	RecencyWindow time.Duration
	Dedup         DedupOptions
	Labeler       AgeLabeler
	Votes         map[string]model.VoteKind
}

// SortNewestFirst は作成日時の降順に並べたコピーを返す（同時刻は元の順序を保つ）
func SortNewestFirst(reports []model.Report) []model.Report {
	sorted := make([]model.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// BuildProjection はワーキングセットから地図・リスト表示用のデータを生成する
//   - 先頭（最新）のスポットが当日かつ有効な場合のみ newest とする
//   - 当日・有効・直近ウィンドウ内のスポットは new（複数可）
//   - 前日以前または取り下げ済みのスポットは Old に振り分ける
func BuildProjection(reports []model.Report, opts RankOptions) model.Projection {
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = DefaultRecencyWindow
	}
	if opts.Dedup.Precision == 0 && opts.Dedup.RadiusDegrees == 0 {
		opts.Dedup = DefaultDedupOptions
	}

	sorted := SortNewestFirst(reports)
	placements := OffsetDuplicateLocations(sorted, opts.Dedup)
	n := len(sorted)

	projection := model.Projection{
		GeneratedAt: opts.Now,
		Markers:     make([]model.SpotView, 0, n),
		Today:       []model.SpotView{},
		Old:         []model.SpotView{},
		TotalCount:  n,
	}

	for i, r := range sorted {
		stale := IsStale(r.CreatedAt, opts.Now)
		live := r.IsActive && !stale
		view := model.SpotView{
			Report:       r,
			RenderLat:    placements[i].Position.Lat(),
			RenderLng:    placements[i].Position.Lon(),
			GroupSize:    placements[i].GroupSize,
			IndexInGroup: placements[i].IndexInGroup,
			IsStale:      stale,
			IsNew:        live && IsRecent(r.CreatedAt, opts.Now, opts.RecencyWindow),
			IsNewest:     i == 0 && live,
			IsConfirmed:  r.Likes >= ConfirmedLikesThreshold,
			CanVote:      live,
			RelativeAge:  opts.Labeler.Label(r.CreatedAt, opts.Now),
			UserVote:     opts.Votes[r.ID],
		}

		switch {
		case view.IsNewest:
			view.ZIndex = zIndexNewest
			projection.NewestID = r.ID
		case view.IsNew:
			view.ZIndex = zIndexNewBase + (n - i)
		default:
			view.ZIndex = n - i
		}

		style := model.GetCategoryStyle(r.Category)
		view.CategoryLabel = model.GetCategoryName(r.Category)
		view.CategoryColor = style.Color
		view.CategoryIcon = style.Icon

		projection.Markers = append(projection.Markers, view)
		if r.IsActive {
			projection.ActiveCount++
		}
		if live {
			projection.Today = append(projection.Today, view)
			projection.TodayCount++
		} else {
			projection.Old = append(projection.Old, view)
		}
	}

	projection.PopularLocations = CountPopularLocations(sorted, opts.Dedup.Precision, ConfirmedLikesThreshold)
	return projection
}

// CountPopularLocations は座標グループごとのいいね合計がthreshold以上の地点数を数える
func CountPopularLocations(reports []model.Report, precision, threshold int) int {
	likesByKey := make(map[string]int)
	for _, r := range reports {
		likesByKey[helper.CoordinateKey(r.Lat, r.Lng, precision)] += r.Likes
	}

	popular := 0
	for _, likes := range likesByKey {
		if likes >= threshold {
			popular++
		}
	}
	return popular
}
