package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
)

func TestVoteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	file, err := NewVoteFile(dir)
	require.NoError(t, err)

	votes, err := file.LoadVotes()
	require.NoError(t, err)
	assert.Empty(t, votes)

	require.NoError(t, file.SaveVotes(map[string]model.VoteKind{
		"a": model.VoteEndorse,
		"b": model.VoteDispute,
	}))

	reopened, err := NewVoteFile(dir)
	require.NoError(t, err)
	votes, err = reopened.LoadVotes()
	require.NoError(t, err)
	assert.Equal(t, model.VoteEndorse, votes["a"])
	assert.Equal(t, model.VoteDispute, votes["b"])
}

func TestVoteFile_AcceptsLegacyValues(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"a":"like","b":"dislike","c":"maybe"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, VotesFileName), []byte(legacy), 0o644))

	file, err := NewVoteFile(dir)
	require.NoError(t, err)
	votes, err := file.LoadVotes()
	require.NoError(t, err)

	assert.Equal(t, map[string]model.VoteKind{
		"a": model.VoteEndorse,
		"b": model.VoteDispute,
	}, votes)
}

func TestVoteFile_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VotesFileName), []byte("{"), 0o644))

	file, err := NewVoteFile(dir)
	require.NoError(t, err)
	_, err = file.LoadVotes()
	assert.Error(t, err)
}
