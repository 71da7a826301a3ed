package helper

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"SpotMap-App/internal/domain/model"
)

// SanitizeCount は信頼できない投票カウンタを [0, MaxVoteCount] の整数に正規化する
// 数値に変換できない値・負数・上限超過は 0 になる
func SanitizeCount(value interface{}) int {
	num := toNumber(value)
	if math.IsNaN(num) || num < 0 || num > model.MaxVoteCount {
		return 0
	}
	return int(math.Floor(num))
}

// ClampCount はカウンタを [0, MaxVoteCount] に収める
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > model.MaxVoteCount {
		return model.MaxVoteCount
	}
	return n
}

// toNumber は任意の値を数値に変換する（変換できない場合はNaN）
func toNumber(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
