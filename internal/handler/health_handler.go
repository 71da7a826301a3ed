package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout バックエンドのヘルスチェックのタイムアウト
const healthCheckTimeout = 3 * time.Second

// HealthCheckFunc バックエンドへの疎通確認
type HealthCheckFunc func(ctx context.Context) error

// HealthHandler ヘルスチェックのHTTPハンドラー
type HealthHandler struct {
	mode  string
	check HealthCheckFunc
}

// NewHealthHandler HealthHandlerの新しいインスタンスを作成（checkがnilなら疎通確認なし）
func NewHealthHandler(mode string, check HealthCheckFunc) *HealthHandler {
	return &HealthHandler{
		mode:  mode,
		check: check,
	}
}

// GetHealth GET /api/health - サーバーとバックエンドの状態を返す
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "SpotMap-App",
				"store":   h.mode,
				"error":   "バックエンドに接続できません",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "SpotMap-App",
		"store":   h.mode,
	})
}
