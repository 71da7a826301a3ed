package service

import (
	"log"
	"sync"

	"SpotMap-App/internal/domain/helper"
	"SpotMap-App/internal/domain/model"
	"SpotMap-App/internal/domain/repository"
)

// ApplyVote は現在の投票状態と操作からトグル後のカウンタと投票状態を計算する
//   - 同じ票を再度押す: 投票を取り消し、その票を1減らす
//   - 逆の票から切り替え: 新しい票を1増やし、元の票を1減らす
//   - 未投票: 新しい票を1増やす
func ApplyVote(current, action model.VoteKind, likes, dislikes int) model.VoteOutcome {
	likes = helper.SanitizeCount(likes)
	dislikes = helper.SanitizeCount(dislikes)

	if action != model.VoteEndorse && action != model.VoteDispute {
		return model.VoteOutcome{Likes: likes, Dislikes: dislikes, Vote: current}
	}

	// 支持/否定を同じロジックで扱うため、操作側を own、反対側を other とする
	own, other := &likes, &dislikes
	if action == model.VoteDispute {
		own, other = &dislikes, &likes
	}

	next := action
	switch current {
	case action:
		*own = helper.ClampCount(*own - 1)
		next = model.VoteNone
	case model.VoteNone:
		*own = helper.ClampCount(*own + 1)
	default:
		*own = helper.ClampCount(*own + 1)
		*other = helper.ClampCount(*other - 1)
	}

	return model.VoteOutcome{Likes: likes, Dislikes: dislikes, Vote: next}
}

// VoteReconciler はこのプロファイルの投票記録を保持し、1スポット1票を保証する
type VoteReconciler struct {
	mu    sync.Mutex
	votes map[string]model.VoteKind
	store repository.VoteRecordStore
}

// NewVoteReconciler は保存済みの投票記録を読み込んでVoteReconcilerを作成する
// 読み込みに失敗した場合は空の記録から開始する
func NewVoteReconciler(store repository.VoteRecordStore) *VoteReconciler {
	votes, err := store.LoadVotes()
	if err != nil {
		log.Printf("⚠️ 投票記録の読み込みに失敗、空の状態で開始します: %v", err)
		votes = nil
	}
	if votes == nil {
		votes = make(map[string]model.VoteKind)
	}
	return &VoteReconciler{votes: votes, store: store}
}

// ToggleEndorse は「本当」票をトグルする
func (v *VoteReconciler) ToggleEndorse(reportID string, likes, dislikes int) model.VoteOutcome {
	return v.toggle(reportID, model.VoteEndorse, likes, dislikes)
}

// ToggleDispute は「嘘」票をトグルする
func (v *VoteReconciler) ToggleDispute(reportID string, likes, dislikes int) model.VoteOutcome {
	return v.toggle(reportID, model.VoteDispute, likes, dislikes)
}

func (v *VoteReconciler) toggle(reportID string, action model.VoteKind, likes, dislikes int) model.VoteOutcome {
	v.mu.Lock()
	defer v.mu.Unlock()

	outcome := ApplyVote(v.votes[reportID], action, likes, dislikes)
	if outcome.Vote == model.VoteNone {
		delete(v.votes, reportID)
	} else {
		v.votes[reportID] = outcome.Vote
	}

	if err := v.store.SaveVotes(v.copyLocked()); err != nil {
		log.Printf("⚠️ 投票記録の保存に失敗: %v", err)
	}
	return outcome
}

// VoteFor は指定スポットへの現在の投票状態を返す
func (v *VoteReconciler) VoteFor(reportID string) model.VoteKind {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.votes[reportID]
}

// Votes は投票記録のコピーを返す
func (v *VoteReconciler) Votes() map[string]model.VoteKind {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyLocked()
}

func (v *VoteReconciler) copyLocked() map[string]model.VoteKind {
	out := make(map[string]model.VoteKind, len(v.votes))
	for id, kind := range v.votes {
		out[id] = kind
	}
	return out
}
