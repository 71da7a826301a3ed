package model

import "time"

// SpotView 地図マーカー/リスト項目として描画するための注釈付きスポット
type SpotView struct {
	Report

	RenderLat    float64 `json:"renderLat"`    // 重複座標をずらした描画用緯度
	RenderLng    float64 `json:"renderLng"`    // 重複座標をずらした描画用経度
	GroupSize    int     `json:"groupSize"`    // 同一座標グループのサイズ
	IndexInGroup int     `json:"indexInGroup"` // グループ内での順番

	IsStale     bool     `json:"isStale"`     // 前日以前の投稿
	IsNew       bool     `json:"isNew"`       // 直近ウィンドウ内の有効な投稿
	IsNewest    bool     `json:"isNewest"`    // 最新かつ有効な唯一の投稿
	IsConfirmed bool     `json:"isConfirmed"` // いいねが一定数以上
	CanVote     bool     `json:"canVote"`     // 当日かつ有効な投稿のみ投票可能
	ZIndex      int      `json:"zIndex"`      // マーカーの重なり順
	RelativeAge string   `json:"relativeAge"` // 「N分前」などの表示
	UserVote    VoteKind `json:"userVote,omitempty"`

	CategoryLabel string `json:"categoryLabel"`
	CategoryColor string `json:"categoryColor"`
	CategoryIcon  string `json:"categoryIcon"`
}

// Projection ワーキングセットから生成した表示用データ一式
type Projection struct {
	Version          uint64     `json:"version"`
	GeneratedAt      time.Time  `json:"generatedAt"`
	Markers          []SpotView `json:"markers"` // 作成日時の降順
	Today            []SpotView `json:"today"`   // 当日かつ有効
	Old              []SpotView `json:"old"`     // 前日以前または取り下げ済み
	NewestID         string     `json:"newestId,omitempty"`
	TotalCount       int        `json:"totalCount"`
	ActiveCount      int        `json:"activeCount"`
	TodayCount       int        `json:"todayCount"`
	PopularLocations int        `json:"popularLocations"`
}
