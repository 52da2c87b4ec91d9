package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NONE treats every weekday as a business day.
	NONE   CalendarID = "NONE"
	TARGET CalendarID = "TARGET"
	JPN    CalendarID = "JPN"
	USD    CalendarID = "USD"
	GBP    CalendarID = "GBP"
	KRW    CalendarID = "KRW"
)

// fixed month/day holidays observed every year.
var fixedHolidays = map[CalendarID][][2]int{
	TARGET: {{1, 1}, {5, 1}, {12, 25}, {12, 26}},
	JPN:    {{1, 1}, {1, 2}, {1, 3}, {12, 31}},
	USD:    {{1, 1}, {7, 4}, {12, 25}},
	GBP:    {{1, 1}, {12, 25}, {12, 26}},
	KRW:    {{1, 1}, {3, 1}, {5, 5}, {8, 15}, {10, 3}, {10, 9}, {12, 25}},
}

var (
	mu       sync.RWMutex
	holidays = map[CalendarID]map[string]struct{}{}
)

// Parse resolves a calendar name. Empty means NONE.
func Parse(s string) (CalendarID, error) {
	id := CalendarID(strings.ToUpper(strings.TrimSpace(s)))
	if id == "" {
		return NONE, nil
	}
	if id == NONE {
		return id, nil
	}
	if _, ok := fixedHolidays[id]; !ok {
		return "", fmt.Errorf("calendar: unknown calendar %q", s)
	}
	return id, nil
}

// AddHolidays registers ad-hoc holiday dates (YYYY-MM-DD) on a calendar.
func AddHolidays(cal CalendarID, dates ...string) error {
	mu.Lock()
	defer mu.Unlock()
	set, ok := holidays[cal]
	if !ok {
		set = make(map[string]struct{}, len(dates))
		holidays[cal] = set
	}
	for _, d := range dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("calendar: bad holiday %q: %w", d, err)
		}
		set[d] = struct{}{}
	}
	return nil
}

func isHoliday(cal CalendarID, t time.Time) bool {
	for _, md := range fixedHolidays[cal] {
		if int(t.Month()) == md[0] && t.Day() == md[1] {
			return true
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := holidays[cal][t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding moves t back to the nearest business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
