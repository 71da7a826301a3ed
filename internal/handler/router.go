package handler

import (
	"github.com/gin-gonic/gin"
)

// NewRouter APIのルーティングを設定したginエンジンを作成
func NewRouter(spots *SpotsHandler, places *PlacesHandler, health *HealthHandler) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/health", health.GetHealth)
		api.GET("/categories", GetCategories)

		spotsGroup := api.Group("/spots")
		{
			spotsGroup.GET("", spots.GetSpots)
			spotsGroup.POST("", spots.CreateSpot)
			spotsGroup.GET("/markers", spots.GetMarkers)
			spotsGroup.GET("/stream", spots.StreamSpots)
			spotsGroup.POST("/:id/endorse", spots.EndorseSpot)
			spotsGroup.POST("/:id/dispute", spots.DisputeSpot)
		}

		api.GET("/votes", spots.GetVotes)
		api.GET("/places/search", places.SearchPlaces)
	}

	return router
}
