package repository

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"SpotMap-App/internal/domain/model"
)

// ReportPoint スポットの真の座標を orb.Point（[lng, lat]）で返す
func ReportPoint(report model.Report) orb.Point {
	return orb.Point{report.Lng, report.Lat}
}

// ReportLocationWKT スポットの座標を ST_GeomFromText に渡す WKT 文字列に変換
func ReportLocationWKT(report model.Report) string {
	return wkt.MarshalString(ReportPoint(report))
}
