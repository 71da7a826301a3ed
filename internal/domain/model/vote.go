package model

// VoteKind ブラウザ（プロファイル）ごとの投票状態
type VoteKind string

const (
	VoteNone    VoteKind = ""
	VoteEndorse VoteKind = "endorse"
	VoteDispute VoteKind = "dispute"
)

// ParseVoteKind 保存済みの文字列をVoteKindに変換する
// 旧フォーマットの "like" / "dislike" も受け付ける
func ParseVoteKind(s string) VoteKind {
	switch s {
	case "endorse", "like":
		return VoteEndorse
	case "dispute", "dislike":
		return VoteDispute
	default:
		return VoteNone
	}
}

// VoteOutcome 投票トグル後のカウンタと投票状態
type VoteOutcome struct {
	Likes    int
	Dislikes int
	Vote     VoteKind
}
