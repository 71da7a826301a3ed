package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"SpotMap-App/internal/domain/model"
)

// VotesFileName DATA_DIR配下の投票記録ファイル名
const VotesFileName = "user_votes.json"

// VoteFile このプロファイルの投票記録をJSONファイルに保存する
type VoteFile struct {
	mu   sync.Mutex
	path string
}

// NewVoteFile dataDir配下に投票記録を保存するVoteFileを作成
func NewVoteFile(dataDir string) (*VoteFile, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("データディレクトリの作成に失敗: %w", err)
	}
	return &VoteFile{path: filepath.Join(dataDir, VotesFileName)}, nil
}

// LoadVotes 投票記録を読み込む（ファイルがなければ空）
// 不明な投票種別は読み飛ばす
func (f *VoteFile) LoadVotes() (map[string]model.VoteKind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	votes := make(map[string]model.VoteKind)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return votes, nil
		}
		return nil, fmt.Errorf("投票記録の読み込みに失敗: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("投票記録のJSONアンマーシャル失敗: %w", err)
	}
	for id, value := range raw {
		if kind := model.ParseVoteKind(value); kind != model.VoteNone {
			votes[id] = kind
		}
	}
	return votes, nil
}

// SaveVotes 投票記録を保存する
func (f *VoteFile) SaveVotes(votes map[string]model.VoteKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(votes, "", "  ")
	if err != nil {
		return fmt.Errorf("投票記録のJSONマーシャル失敗: %w", err)
	}
	return writeFileAtomic(f.path, data)
}
