package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
)

func newReport(id string, lat, lng float64, createdAt time.Time) model.Report {
	return model.Report{
		ID:        id,
		Name:      "স্পট " + id,
		Address:   "ধানমন্ডি",
		Category:  model.CategoryKacchiBiryani,
		AddedBy:   model.DefaultAddedBy,
		Lat:       lat,
		Lng:       lng,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func TestOffsetDuplicateLocations_SingleKeepsTrueCoordinate(t *testing.T) {
	now := time.Now()
	reports := []model.Report{
		newReport("a", 23.7596, 90.379, now),
		newReport("b", 23.8103, 90.4125, now),
	}

	placements := OffsetDuplicateLocations(reports, DefaultDedupOptions)
	require.Len(t, placements, 2)

	for i, p := range placements {
		assert.Equal(t, reports[i].ID, p.ReportID)
		assert.Equal(t, 1, p.GroupSize)
		assert.Equal(t, 0, p.IndexInGroup)
		assert.Equal(t, reports[i].Lat, p.Position.Lat())
		assert.Equal(t, reports[i].Lng, p.Position.Lon())
	}
}

func TestOffsetDuplicateLocations_ThreeCoincidentSpreadOnCircle(t *testing.T) {
	now := time.Now()
	lat, lng := 23.7596, 90.379
	reports := []model.Report{
		newReport("a", lat, lng, now),
		newReport("b", lat, lng, now),
		// 4桁目以下の差は同じグループ
		newReport("c", lat+0.00001, lng-0.00001, now),
	}

	placements := OffsetDuplicateLocations(reports, DefaultDedupOptions)
	require.Len(t, placements, 3)

	seen := make(map[[2]float64]bool)
	for i, p := range placements {
		assert.Equal(t, 3, p.GroupSize)
		assert.Equal(t, i, p.IndexInGroup)

		dLat := p.Position.Lat() - reports[i].Lat
		dLng := p.Position.Lon() - reports[i].Lng
		assert.InDelta(t, 0.005, math.Hypot(dLat, dLng), 1e-12)

		angle := float64(i) * 120 * math.Pi / 180
		assert.InDelta(t, 0.005*math.Cos(angle), dLat, 1e-12)
		assert.InDelta(t, 0.005*math.Sin(angle), dLng, 1e-12)

		key := [2]float64{p.Position.Lat(), p.Position.Lon()}
		assert.False(t, seen[key], "描画座標が重複しています")
		seen[key] = true
	}

	// 真の座標は変更されない
	assert.Equal(t, lat, reports[0].Lat)
	assert.Equal(t, lng, reports[0].Lng)
}

func TestOffsetDuplicateLocations_CustomOptions(t *testing.T) {
	now := time.Now()
	reports := []model.Report{
		newReport("a", 23.75, 90.37, now),
		newReport("b", 23.75, 90.37, now),
	}

	placements := OffsetDuplicateLocations(reports, DedupOptions{Precision: 2, RadiusDegrees: 0.01})
	require.Len(t, placements, 2)
	assert.InDelta(t, 23.76, placements[0].Position.Lat(), 1e-12)
	assert.InDelta(t, 90.37, placements[0].Position.Lon(), 1e-12)
	assert.InDelta(t, 23.74, placements[1].Position.Lat(), 1e-12)
	assert.InDelta(t, 90.37, placements[1].Position.Lon(), 1e-12)
}

func TestOffsetDuplicateLocations_Empty(t *testing.T) {
	assert.Empty(t, OffsetDuplicateLocations(nil, DefaultDedupOptions))
}
