package model

// PlaceCandidate 場所検索の候補
type PlaceCandidate struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Type        string  `json:"type"`
}
