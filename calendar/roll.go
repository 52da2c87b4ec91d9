package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Roll is a business-day adjustment rule.
type Roll string

const (
	Unadjusted        Roll = "UNADJUSTED"
	Following         Roll = "FOLLOWING"
	ModifiedFollowing Roll = "MODIFIED_FOLLOWING"
	Preceding         Roll = "PRECEDING"
)

// ParseRoll resolves a roll name. Empty means MODIFIED_FOLLOWING.
func ParseRoll(s string) (Roll, error) {
	r := Roll(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case "":
		return ModifiedFollowing, nil
	case Unadjusted, Following, ModifiedFollowing, Preceding:
		return r, nil
	default:
		return "", fmt.Errorf("calendar: unknown roll %q", s)
	}
}

// Apply adjusts t on cal according to the roll rule.
func (r Roll) Apply(cal CalendarID, t time.Time) time.Time {
	switch r {
	case Unadjusted:
		return t
	case Following:
		return AdjustFollowing(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	default:
		return Adjust(cal, t)
	}
}
