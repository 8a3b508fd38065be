// Package period bilanço karşılaştırması için dönem çiftlerini çözer.
package period

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrUnknownMode  = errors.New("period: bilinmeyen karşılaştırma modu")
	ErrInvalidRange = errors.New("period: geçersiz tarih aralığı")
)

type Mode string

const (
	ModeTodayVsYesterday Mode = "today_vs_yesterday"
	ModeWeekVsLastWeek   Mode = "week_vs_last_week"
	ModeMonthVsLastMonth Mode = "month_vs_last_month"
	ModeYearVsLastYear   Mode = "year_vs_last_year"
	ModeLast7VsPrevious7 Mode = "last7_vs_previous7"
	ModeCustom           Mode = "custom"
)

type ModeInfo struct {
	Mode  Mode   `json:"mode"`
	Title string `json:"title"`
}

// Modes arayüzdeki karşılaştırma seçenekleri, gösterim sırasıyla.
func Modes() []ModeInfo {
	return []ModeInfo{
		{ModeTodayVsYesterday, "Bugün / Dün"},
		{ModeWeekVsLastWeek, "Bu Hafta / Geçen Hafta"},
		{ModeMonthVsLastMonth, "Bu Ay / Geçen Ay"},
		{ModeYearVsLastYear, "Bu Yıl / Geçen Yıl"},
		{ModeLast7VsPrevious7, "Son 7 Gün / Önceki 7 Gün"},
		{ModeCustom, "Özel Aralık"},
	}
}

// Range gün bazlı, her iki ucu dahil tarih aralığı.
type Range struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days aralıktaki gün sayısı.
func (r Range) Days() int {
	y1, m1, d1 := r.Start.Date()
	y2, m2, d2 := r.End.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours()/24) + 1
}

// Contains t aralıktaki günlerden birine düşüyor mu?
func (r Range) Contains(t time.Time) bool {
	day := StartOfDay(t.In(r.Start.Location()))
	return !day.Before(r.Start) && !day.After(r.End)
}

// EndExclusive sorgularda kullanılan, bitiş gününden sonraki gece yarısı.
func (r Range) EndExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Pair Left taban (önceki) dönem, Right güncel dönem.
type Pair struct {
	Mode  Mode  `json:"mode"`
	Left  Range `json:"left"`
	Right Range `json:"right"`
}

type CustomRanges struct {
	LeftStart, LeftEnd   time.Time
	RightStart, RightEnd time.Time
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return t, nil
}

// Resolve modu, now'ın saat dilimine göre iki aralığa çevirir. Takvim
// dönemleri bugüne kadar olan kısımla, önceki dönemin aynı uzunluktaki
// kısmıyla karşılaştırılır.
func Resolve(mode Mode, now time.Time, custom *CustomRanges) (Pair, error) {
	today := StartOfDay(now)

	switch mode {
	case ModeTodayVsYesterday:
		yesterday := today.AddDate(0, 0, -1)
		return Pair{mode, Range{"Dün", yesterday, yesterday}, Range{"Bugün", today, today}}, nil

	case ModeWeekVsLastWeek:
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		return Pair{
			Mode:  mode,
			Left:  Range{"Geçen Hafta", monday.AddDate(0, 0, -7), today.AddDate(0, 0, -7)},
			Right: Range{"Bu Hafta", monday, today},
		}, nil

	case ModeMonthVsLastMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		prevFirst := first.AddDate(0, -1, 0)
		return Pair{
			Mode:  mode,
			Left:  Range{"Geçen Ay", prevFirst, clampDay(prevFirst, today.Day())},
			Right: Range{"Bu Ay", first, today},
		}, nil

	case ModeYearVsLastYear:
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		prevFirst := first.AddDate(-1, 0, 0)
		sameMonth := time.Date(prevFirst.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Pair{
			Mode:  mode,
			Left:  Range{"Geçen Yıl", prevFirst, clampDay(sameMonth, today.Day())},
			Right: Range{"Bu Yıl", first, today},
		}, nil

	case ModeLast7VsPrevious7:
		return Pair{
			Mode:  mode,
			Left:  Range{"Önceki 7 Gün", today.AddDate(0, 0, -13), today.AddDate(0, 0, -7)},
			Right: Range{"Son 7 Gün", today.AddDate(0, 0, -6), today},
		}, nil

	case ModeCustom:
		if custom == nil {
			return Pair{}, fmt.Errorf("%w: özel aralık için dört tarih zorunlu", ErrInvalidRange)
		}
		left, err := customRange("1. Dönem", custom.LeftStart, custom.LeftEnd)
		if err != nil {
			return Pair{}, err
		}
		right, err := customRange("2. Dönem", custom.RightStart, custom.RightEnd)
		if err != nil {
			return Pair{}, err
		}
		return Pair{mode, left, right}, nil
	}

	return Pair{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

func customRange(label string, start, end time.Time) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, fmt.Errorf("%w: %s başlangıç ve bitiş zorunlu", ErrInvalidRange, label)
	}
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return Range{}, fmt.Errorf("%w: %s bitişi başlangıçtan önce", ErrInvalidRange, label)
	}
	return Range{label, start, end}, nil
}

// clampDay ayın day. gününü, ay daha kısaysa son gününü döner.
func clampDay(firstOfMonth time.Time, day int) time.Time {
	last := firstOfMonth.AddDate(0, 1, -1)
	if day > last.Day() {
		return last
	}
	return firstOfMonth.AddDate(0, 0, day-1)
}
