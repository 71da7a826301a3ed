package model

import (
	"time"
)

// MaxVoteCount いいね/よくないねカウンタの上限値
const MaxVoteCount = 99999

// DefaultAddedBy 投稿者が未入力の場合の表示名
const DefaultAddedBy = "anonymous"

// Report ユーザーが投稿した「今ここで提供中」のスポット報告
type Report struct {
	ID          string    `json:"id" firestore:"id"`                           // ユニークなスポットID
	Name        string    `json:"name" firestore:"name"`                       // 店名・表示名
	Address     string    `json:"address" firestore:"address"`                 // 住所・エリア名
	Category    string    `json:"category" firestore:"category"`               // 料理カテゴリ
	Description string    `json:"description,omitempty" firestore:"description"` // 補足（旧データではカテゴリ名が入る）
	AddedBy     string    `json:"addedBy" firestore:"addedBy"`                 // 投稿者ラベル
	Lat         float64   `json:"lat" firestore:"lat"`                         // 緯度
	Lng         float64   `json:"lng" firestore:"lng"`                         // 経度
	IsActive    bool      `json:"isActive" firestore:"isActive"`               // falseは管理者による取り下げ
	Rating      *float64  `json:"rating,omitempty" firestore:"rating,omitempty"` // 評価値（NULLABLE）
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`             // 投稿日時（作成後は不変）
	Likes       int       `json:"likes" firestore:"likes"`                     // 「本当」票
	Dislikes    int       `json:"dislikes" firestore:"dislikes"`               // 「嘘」票
}

// ReportPatch 部分更新用のフィールド集合（nilのフィールドは更新しない）
type ReportPatch struct {
	Likes    *int  `json:"likes,omitempty"`
	Dislikes *int  `json:"dislikes,omitempty"`
	IsActive *bool `json:"isActive,omitempty"`
}

// IsEmpty 更新対象のフィールドが一つもない場合true
func (p ReportPatch) IsEmpty() bool {
	return p.Likes == nil && p.Dislikes == nil && p.IsActive == nil
}

// Fields 永続化層へ渡すカラム名→値のマップに変換
func (p ReportPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Likes != nil {
		fields["likes"] = *p.Likes
	}
	if p.Dislikes != nil {
		fields["dislikes"] = *p.Dislikes
	}
	if p.IsActive != nil {
		fields["isActive"] = *p.IsActive
	}
	return fields
}

// ApplyTo パッチの内容をReportに反映する
func (p ReportPatch) ApplyTo(r *Report) {
	if p.Likes != nil {
		r.Likes = *p.Likes
	}
	if p.Dislikes != nil {
		r.Dislikes = *p.Dislikes
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
}

// CreateSpotRequest スポット投稿リクエスト
type CreateSpotRequest struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	AddedBy     string   `json:"addedBy"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Rating      *float64 `json:"rating,omitempty"`
}

// VoteResponse 投票APIのレスポンス
type VoteResponse struct {
	ID       string   `json:"id"`
	Likes    int      `json:"likes"`
	Dislikes int      `json:"dislikes"`
	Vote     VoteKind `json:"vote"`
}
