package application

import (
	"time"

	"SpotMap-App/internal/domain/model"
)

// sampleSpot サンプルデータの定義（createdAtは現在時刻からの経過時間）
type sampleSpot struct {
	id       string
	name     string
	address  string
	category string
	lat      float64
	lng      float64
	age      time.Duration
	likes    int
	dislikes int
}

var sampleSpotDefinitions = []sampleSpot{
	{"sample-1", "বায়তুল মোকাররম মসজিদ", "পল্টন, ঢাকা", model.CategoryKacchiBiryani, 23.7298, 90.4125, 20 * time.Minute, 5, 0},
	{"sample-2", "তারা মসজিদ", "আরমানিটোলা, পুরান ঢাকা", model.CategoryTehari, 23.7153, 90.4012, 90 * time.Minute, 2, 1},
	{"sample-3", "স্টার মসজিদ", "ধানমন্ডি, ঢাকা", model.CategoryMorogPolao, 23.7465, 90.3760, 3 * time.Hour, 1, 0},
	{"sample-4", "গুলশান সেন্ট্রাল মসজিদ", "গুলশান ১, ঢাকা", model.CategoryKhichuri, 23.7806, 90.4163, 6 * time.Hour, 0, 0},
	{"sample-5", "মিরপুর কেন্দ্রীয় মসজিদ", "মিরপুর ১০, ঢাকা", model.CategoryKacchiBiryani, 23.8069, 90.3687, 30 * time.Hour, 7, 2},
}

// SampleSpots どのデータソースも利用できない場合に表示するサンプルデータ
func SampleSpots(now time.Time) []model.Report {
	reports := make([]model.Report, 0, len(sampleSpotDefinitions))
	for _, s := range sampleSpotDefinitions {
		reports = append(reports, model.Report{
			ID:        s.id,
			Name:      s.name,
			Address:   s.address,
			Category:  s.category,
			AddedBy:   model.DefaultAddedBy,
			Lat:       s.lat,
			Lng:       s.lng,
			IsActive:  true,
			CreatedAt: now.Add(-s.age),
			Likes:     s.likes,
			Dislikes:  s.dislikes,
		})
	}
	return reports
}
