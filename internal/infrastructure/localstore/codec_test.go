package localstore

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotMap-App/internal/domain/model"
)

func sampleReport(id string) model.Report {
	return model.Report{
		ID:        id,
		Name:      "নান্না বিরিয়ানি",
		Address:   "পুরান ঢাকা",
		Category:  model.CategoryKacchiBiryani,
		AddedBy:   model.DefaultAddedBy,
		Lat:       23.7104,
		Lng:       90.4074,
		IsActive:  true,
		CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Likes:     2,
	}
}

func TestCodec_RoundTripKeepsNonASCII(t *testing.T) {
	reports := []model.Report{sampleReport("a"), sampleReport("b")}

	text, err := EncodeReports(reports)
	require.NoError(t, err)

	decoded, err := DecodeReports(text)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "নান্না বিরিয়ানি", decoded[0].Name)
	assert.True(t, reports[0].CreatedAt.Equal(decoded[0].CreatedAt))
	assert.Equal(t, "b", decoded[1].ID)
}

func TestCodec_EncodesNilAsEmptyList(t *testing.T) {
	text, err := EncodeReports(nil)
	require.NoError(t, err)

	decoded, err := DecodeReports(text)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodec_SanitizesCounters(t *testing.T) {
	raw := `[{"id":"x","lat":23.7,"lng":90.3,"createdAt":"2026-10-19T12:00:00Z","likes":-3,"dislikes":"7"}]`
	text := base64.StdEncoding.EncodeToString([]byte(raw))

	decoded, err := DecodeReports(text)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, 0, decoded[0].Likes)
	assert.Equal(t, 7, decoded[0].Dislikes)
}

func TestCodec_RejectsGarbage(t *testing.T) {
	_, err := DecodeReports("%%% not base64 %%%")
	assert.Error(t, err)
}
