package service

import (
	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
)

// ApplyChange は変更イベントをワーキングセットに畳み込んだ新しいスライスを返す（入力は変更しない）
//   - insert: 未登録のIDなら先頭に追加、既存IDなら無視（楽観的追加との競合対策）
//   - update: 同じIDの行を置き換え、存在しなければ何もしない
//   - delete: 同じIDの行を削除、存在しなければ何もしない
//
// 同一IDに対するイベントは到着順に適用され、最後の書き込みが勝つ
func ApplyChange(set []model.Report, event model.ChangeEvent) []model.Report {
	id := event.TargetID()
	if id == "" {
		return set
	}
	index := helper.FindByID(set, id)

	switch event.Op {
	case model.ChangeInsert:
		if index >= 0 {
			return set
		}
		next := make([]model.Report, 0, len(set)+1)
		next = append(next, helper.SanitizeReport(event.Report))
		return append(next, set...)

	case model.ChangeUpdate:
		if index < 0 {
			return set
		}
		next := make([]model.Report, len(set))
		copy(next, set)
		next[index] = helper.SanitizeReport(event.Report)
		return next

	case model.ChangeDelete:
		if index < 0 {
			return set
		}
		next := make([]model.Report, 0, len(set)-1)
		next = append(next, set[:index]...)
		return append(next, set[index+1:]...)

	default:
		return set
	}
}

// ApplyOptimisticVote は投票結果のカウンタをワーキングセットに反映する
func ApplyOptimisticVote(set []model.Report, id string, outcome model.VoteOutcome) []model.Report {
	index := helper.FindByID(set, id)
	if index < 0 {
		return set
	}
	next := make([]model.Report, len(set))
	copy(next, set)
	next[index].Likes = outcome.Likes
	next[index].Dislikes = outcome.Dislikes
	return next
}

// PrependIfAbsent はスポットを先頭に追加する（既存IDの場合は何もしない）
func PrependIfAbsent(set []model.Report, report model.Report) []model.Report {
	return ApplyChange(set, model.ChangeEvent{Op: model.ChangeInsert, Report: report, ID: report.ID})
}
