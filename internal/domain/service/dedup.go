package service

import (
	"math"

	"github.com/paulmach/orb"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// DedupOptions 重複座標のグループ化とずらし量の設定
// ずらし半径は想定ズームでのマーカーサイズより大きくする必要がある
type DedupOptions struct {
	Precision     int     // グループキーの小数桁数（4桁 ≒ 11m）
	RadiusDegrees float64 // 円周上に配置する半径（度）
}

// DefaultDedupOptions 既定値（4桁グリッド、半径0.005度 ≒ 500m）
var DefaultDedupOptions = DedupOptions{
	Precision:     4,
	RadiusDegrees: 0.005,
}

// Placement スポットの描画位置と同一座標グループ内の情報
type Placement struct {
	ReportID     string
	Position     orb.Point // 描画用座標 [lng, lat]
	GroupSize    int
	IndexInGroup int
}

// OffsetDuplicateLocations は同一座標のスポットを円周上に等間隔で配置する
// 戻り値は入力と同じ順序で、スポットの真の座標は変更しない
func OffsetDuplicateLocations(reports []model.Report, opts DedupOptions) []Placement {
	groups := make(map[string][]int)
	for i, r := range reports {
		key := helper.CoordinateKey(r.Lat, r.Lng, opts.Precision)
		groups[key] = append(groups[key], i)
	}

	placements := make([]Placement, len(reports))
	for _, members := range groups {
		n := len(members)
		for index, i := range members {
			r := reports[i]
			p := Placement{
				ReportID:     r.ID,
				Position:     orb.Point{r.Lng, r.Lat},
				GroupSize:    n,
				IndexInGroup: index,
			}
			if n > 1 {
				angle := float64(index) * 360 / float64(n)
				radians := angle * math.Pi / 180
				p.Position = orb.Point{
					r.Lng + math.Sin(radians)*opts.RadiusDegrees,
					r.Lat + math.Cos(radians)*opts.RadiusDegrees,
				}
			}
			placements[i] = p
		}
	}
	return placements
}
