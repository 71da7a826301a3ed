package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultRecencyWindow は「新着」とみなす既定の時間幅
const DefaultRecencyWindow = 2 * time.Hour

// IsStale は投稿のカレンダー日がnowのカレンダー日より前であればtrueを返す
// 経過時間ではなく、nowのタイムゾーンでの日付境界（0時）で判定する
func IsStale(createdAt, now time.Time) bool {
	return startOfDay(createdAt.In(now.Location())).Before(startOfDay(now))
}

// IsRecent は投稿がnowからwindow以内であればtrueを返す
func IsRecent(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) <= window
}

// RelativeAge は英語の相対時間表示を返す
func RelativeAge(createdAt, now time.Time) string {
	return AgeLabeler{Locale: LocaleEnglish}.Label(createdAt, now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const (
	LocaleEnglish = "en"
	LocaleBengali = "bn"
)

// AgeLabeler はロケールに応じた相対時間ラベルを生成する
type AgeLabeler struct {
	Locale string
}

// Label は「たった今」「N分前」「N時間前」「昨日」「N日前」または絶対日時を返す
func (l AgeLabeler) Label(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)
	mins := int64(diff / time.Minute)
	hours := int64(diff / time.Hour)
	days := int64(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return l.justNow()
	case mins < 60:
		return l.unitsAgo(mins, "minute")
	case hours < 24:
		return l.unitsAgo(hours, "hour")
	case days == 1:
		return l.yesterday()
	case days < 7:
		return l.unitsAgo(days, "day")
	default:
		return FormatTimestamp(createdAt.In(now.Location()))
	}
}

// FormatTimestamp は DD/MM/YYYY HH:MM 形式の絶対日時を返す
func FormatTimestamp(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

func (l AgeLabeler) justNow() string {
	if l.Locale == LocaleBengali {
		return "এখনই"
	}
	return "just now"
}

func (l AgeLabeler) yesterday() string {
	if l.Locale == LocaleBengali {
		return "গতকাল"
	}
	return "yesterday"
}

var bengaliUnits = map[string]string{
	"minute": "মিনিট",
	"hour":   "ঘন্টা",
	"day":    "দিন",
}

func (l AgeLabeler) unitsAgo(n int64, unit string) string {
	if l.Locale == LocaleBengali {
		return fmt.Sprintf("%s %s আগে", ToBengaliDigits(n), bengaliUnits[unit])
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// ToBengaliDigits は数値をベンガル数字の文字列に変換する
func ToBengaliDigits(n int64) string {
	return bengaliDigits.Replace(strconv.FormatInt(n, 10))
}
