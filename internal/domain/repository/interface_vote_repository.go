package repository

import "SpotMap-App/internal/domain/model"

// VoteRecordStore このプロファイルの投票記録の永続化
type VoteRecordStore interface {
	LoadVotes() (map[string]model.VoteKind, error)
	SaveVotes(votes map[string]model.VoteKind) error
}
