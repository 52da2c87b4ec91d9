package utils

import (
	"fmt"
	"time"
)

// Day count conventions understood by YearFraction.
const (
	Act360  = "ACT/360"
	Act365F = "ACT/365F"
	Dc30360 = "30/360"
	Dc30E   = "30E/360"
)

// ValidDayCount reports whether YearFraction recognises the convention.
func ValidDayCount(convention string) bool {
	switch convention {
	case Act360, Act365F, Dc30360, Dc30E:
		return true
	default:
		return false
	}
}

// CheckDayCount returns an error for conventions YearFraction does not recognise.
func CheckDayCount(convention string) error {
	if !ValidDayCount(convention) {
		return fmt.Errorf("unknown day count %q", convention)
	}
	return nil
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Dc30E, Dc30360:
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}
