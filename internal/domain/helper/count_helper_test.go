package helper

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"SpotMap-App/internal/domain/model"
)

func TestSanitizeCount(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"nil", nil, 0},
		{"整数", 7, 7},
		{"小数は切り捨て", 3.9, 3},
		{"負数", -1, 0},
		{"上限", model.MaxVoteCount, model.MaxVoteCount},
		{"上限超過", model.MaxVoteCount + 1, 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"数値文字列", " 12 ", 12},
		{"空文字列", "", 0},
		{"不正な文字列", "abc", 0},
		{"true", true, 1},
		{"false", false, 0},
		{"json.Number", json.Number("5"), 5},
		{"オブジェクト", map[string]interface{}{"n": 1}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeCount(tc.value))
		})
	}
}

func TestSanitizeCount_IdempotentAndBounded(t *testing.T) {
	inputs := []interface{}{-5, 0, 1, 2.5, 99999, 100000, "42", math.NaN(), nil, int64(1 << 40)}
	for _, in := range inputs {
		once := SanitizeCount(in)
		assert.GreaterOrEqual(t, once, 0)
		assert.LessOrEqual(t, once, model.MaxVoteCount)
		assert.Equal(t, once, SanitizeCount(once), "input %v", in)
	}
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 0, ClampCount(-1))
	assert.Equal(t, 10, ClampCount(10))
	assert.Equal(t, model.MaxVoteCount, ClampCount(model.MaxVoteCount+5))
}
