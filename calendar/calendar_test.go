package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvebuild/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjust_ModifiedFollowingStaysInMonth(t *testing.T) {
	t.Parallel()

	// 2025-05-31 is a Saturday; following would roll into June.
	got := calendar.Adjust(calendar.NONE, date(2025, 5, 31))
	assert.Equal(t, date(2025, 5, 30), got)
}

func TestAdjust_FixedHoliday(t *testing.T) {
	t.Parallel()

	// 2025-12-25 is a Thursday and a TARGET holiday, 12-26 too.
	got := calendar.Adjust(calendar.TARGET, date(2025, 12, 25))
	assert.Equal(t, date(2025, 12, 29), got)
}

func TestAddBusinessDays_SkipsWeekend(t *testing.T) {
	t.Parallel()

	// Friday + 1 business day = Monday.
	assert.Equal(t, date(2025, 1, 6), calendar.AddBusinessDays(calendar.NONE, date(2025, 1, 3), 1))
	assert.Equal(t, date(2025, 1, 3), calendar.AddBusinessDays(calendar.NONE, date(2025, 1, 6), -1))
}

func TestAddHolidays_Registered(t *testing.T) {
	t.Parallel()

	require.NoError(t, calendar.AddHolidays(calendar.GBP, "2025-08-25"))
	assert.False(t, calendar.IsBusinessDay(calendar.GBP, date(2025, 8, 25)))
	assert.Error(t, calendar.AddHolidays(calendar.GBP, "25/08/2025"))
}

func TestParseRoll(t *testing.T) {
	t.Parallel()

	r, err := calendar.ParseRoll("")
	require.NoError(t, err)
	assert.Equal(t, calendar.ModifiedFollowing, r)

	r, err = calendar.ParseRoll("following")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 6, 2), r.Apply(calendar.NONE, date(2025, 5, 31)))

	_, err = calendar.ParseRoll("sideways")
	assert.Error(t, err)
}

func TestParse_Unknown(t *testing.T) {
	t.Parallel()

	_, err := calendar.Parse("MARS")
	assert.Error(t, err)
	id, err := calendar.Parse("target")
	require.NoError(t, err)
	assert.Equal(t, calendar.TARGET, id)
}
