package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"SpotMap-App/internal/domain/repository"
)

// PlacesHandler 場所検索のHTTPハンドラー
type PlacesHandler struct {
	searcher repository.PlaceSearcher
}

// NewPlacesHandler PlacesHandlerの新しいインスタンスを作成
func NewPlacesHandler(searcher repository.PlaceSearcher) *PlacesHandler {
	return &PlacesHandler{
		searcher: searcher,
	}
}

// SearchPlaces GET /api/places/search?q= - 自由入力テキストから場所の候補を検索
func (h *PlacesHandler) SearchPlaces(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "検索語が指定されていません",
			"details": "qパラメータは必須です",
		})
		return
	}

	candidates, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		log.Printf("⚠️ 場所検索に失敗: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "場所の検索に失敗しました",
			"details": "しばらくしてから再度お試しください",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": candidates,
	})
}
