package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/utils"
)

// Period is one accrual period of a leg.
type Period struct {
	Start   time.Time
	End     time.Time
	Accrual float64
}

// stubDays is the length below which a front stub is merged into the next period.
const stubDays = 7

// Schedule builds accrual periods between start and end, rolling backward from end
// so that regular dates align with maturity and any stub sits at the front.
func Schedule(start, end time.Time, conv Convention) []Period {
	if conv.FrequencyMonths <= 0 {
		return []Period{{Start: start, End: end, Accrual: utils.YearFraction(start, end, conv.DayCount)}}
	}

	var unadjusted []time.Time
	for i := 1; ; i++ {
		d := utils.AddMonth(end, -conv.FrequencyMonths*i)
		if !d.After(start) {
			break
		}
		unadjusted = append([]time.Time{d}, unadjusted...)
	}
	if len(unadjusted) > 0 && utils.Days(start, unadjusted[0]) <= stubDays {
		unadjusted = unadjusted[1:]
	}

	dates := make([]time.Time, 0, len(unadjusted)+2)
	dates = append(dates, start)
	for _, d := range unadjusted {
		adj := conv.Roll.Apply(conv.Calendar, d)
		if adj.After(dates[len(dates)-1]) && adj.Before(end) {
			dates = append(dates, adj)
		}
	}
	dates = append(dates, end)

	periods := make([]Period, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		periods = append(periods, Period{
			Start:   dates[i-1],
			End:     dates[i],
			Accrual: utils.YearFraction(dates[i-1], dates[i], conv.DayCount),
		})
	}
	return periods
}
