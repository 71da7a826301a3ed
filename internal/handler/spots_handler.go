package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"SpotMap-App/internal/application"
	"SpotMap-App/internal/domain/model"
)

// DefaultNearbyRadiusMeters near 指定時に radius_m が省略された場合の半径
const DefaultNearbyRadiusMeters = 1000

// SpotsHandler スポットマップのHTTPハンドラー
type SpotsHandler struct {
	controller application.SpotController
}

// NewSpotsHandler SpotsHandlerの新しいインスタンスを作成
func NewSpotsHandler(controller application.SpotController) *SpotsHandler {
	return &SpotsHandler{
		controller: controller,
	}
}

// GetSpots GET /api/spots - 表示用データ（マーカー・当日/過去のリスト・集計）を取得
func (h *SpotsHandler) GetSpots(c *gin.Context) {
	filter, err := parseSpotFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "クエリパラメータが正しくありません",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.controller.Projection(filter))
}

// GetCategories GET /api/categories - 投稿フォーム用のカテゴリ一覧を取得
func GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": model.GetCategoryInfos(),
	})
}

// GetMarkers GET /api/spots/markers - マーカーをGeoJSONのFeatureCollectionで取得
func (h *SpotsHandler) GetMarkers(c *gin.Context) {
	filter, err := parseSpotFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "クエリパラメータが正しくありません",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, MarkersToFeatureCollection(h.controller.Projection(filter).Markers))
}

// StreamSpots GET /api/spots/stream - ワーキングセットが変わるたびに表示用データをSSEで送る
func (h *SpotsHandler) StreamSpots(c *gin.Context) {
	filter, err := parseSpotFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "クエリパラメータが正しくありません",
			"details": err.Error(),
		})
		return
	}

	updates, cancel := h.controller.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("projection", h.controller.Projection(filter))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case _, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("projection", h.controller.Projection(filter))
			return true
		}
	})
}

// CreateSpot POST /api/spots - スポットを投稿
func (h *SpotsHandler) CreateSpot(c *gin.Context) {
	var req model.CreateSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	created, err := h.controller.Create(c.Request.Context(), &req)
	if err != nil {
		var validationErr *application.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "バリデーションエラー",
				"field":   validationErr.Field,
				"details": validationErr.Message,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "スポットの投稿に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// EndorseSpot POST /api/spots/:id/endorse - 「本当」票をトグル
func (h *SpotsHandler) EndorseSpot(c *gin.Context) {
	res, err := h.controller.Endorse(c.Request.Context(), c.Param("id"))
	h.writeVoteResult(c, res, err)
}

// DisputeSpot POST /api/spots/:id/dispute - 「嘘」票をトグル
func (h *SpotsHandler) DisputeSpot(c *gin.Context) {
	res, err := h.controller.Dispute(c.Request.Context(), c.Param("id"))
	h.writeVoteResult(c, res, err)
}

func (h *SpotsHandler) writeVoteResult(c *gin.Context, res *model.VoteResponse, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, application.ErrSpotNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "スポットが見つかりません",
			"details": c.Param("id"),
		})
	case errors.Is(err, application.ErrVoteLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "このスポットには投票できません",
			"details": "前日以前または取り下げ済みのスポットです",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "投票に失敗しました",
			"details": err.Error(),
		})
	}
}

// GetVotes GET /api/votes - このプロファイルの投票記録
func (h *SpotsHandler) GetVotes(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Votes())
}

// MarkersToFeatureCollection マーカーを描画位置のPointを持つGeoJSONに変換
func MarkersToFeatureCollection(markers []model.SpotView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		feature := geojson.NewFeature(orb.Point{m.RenderLng, m.RenderLat})
		feature.ID = m.ID
		feature.Properties["name"] = m.Name
		feature.Properties["address"] = m.Address
		feature.Properties["category"] = m.Category
		feature.Properties["categoryLabel"] = m.CategoryLabel
		feature.Properties["color"] = m.CategoryColor
		feature.Properties["icon"] = m.CategoryIcon
		feature.Properties["lat"] = m.Lat
		feature.Properties["lng"] = m.Lng
		feature.Properties["likes"] = m.Likes
		feature.Properties["dislikes"] = m.Dislikes
		feature.Properties["isNew"] = m.IsNew
		feature.Properties["isNewest"] = m.IsNewest
		feature.Properties["isStale"] = m.IsStale
		feature.Properties["isConfirmed"] = m.IsConfirmed
		feature.Properties["canVote"] = m.CanVote
		feature.Properties["zIndex"] = m.ZIndex
		feature.Properties["groupSize"] = m.GroupSize
		feature.Properties["relativeAge"] = m.RelativeAge
		if m.UserVote != model.VoteNone {
			feature.Properties["userVote"] = m.UserVote
		}
		fc.Append(feature)
	}
	return fc
}

// parseSpotFilter クエリパラメータ q / bbox / near / radius_m を解析する
func parseSpotFilter(c *gin.Context) (application.SpotFilter, error) {
	filter := application.SpotFilter{Query: c.Query("q")}

	if bbox := c.Query("bbox"); bbox != "" {
		coords, err := parseFloats(bbox, 4)
		if err != nil {
			return filter, fmt.Errorf("bboxは min_lng,min_lat,max_lng,max_lat の形式で指定してください: %w", err)
		}
		if coords[0] > coords[2] || coords[1] > coords[3] {
			return filter, fmt.Errorf("無効な境界ボックス: min値がmax値より大きい")
		}
		bound := orb.Bound{Min: orb.Point{coords[0], coords[1]}, Max: orb.Point{coords[2], coords[3]}}
		filter.Bound = &bound
	}

	if near := c.Query("near"); near != "" {
		coords, err := parseFloats(near, 2)
		if err != nil {
			return filter, fmt.Errorf("nearは lat,lng の形式で指定してください: %w", err)
		}
		point := orb.Point{coords[1], coords[0]}
		filter.Near = &point
		filter.RadiusMeters = DefaultNearbyRadiusMeters

		if raw := c.Query("radius_m"); raw != "" {
			radius, err := strconv.ParseFloat(raw, 64)
			if err != nil || radius <= 0 {
				return filter, fmt.Errorf("radius_mは正の数値で指定してください")
			}
			filter.RadiusMeters = radius
		}
	}

	return filter, nil
}

func parseFloats(raw string, n int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%d個の値が必要です", n)
	}
	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("数値ではありません: %q", part)
		}
		values[i] = v
	}
	return values, nil
}
