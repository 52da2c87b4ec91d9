package instruments

import (
	"fmt"
	"sort"
	"sync"

	"github.com/meenmo/curvebuild/calendar"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/utils"
)

// Convention captures the leg settings an instrument needs to build its schedule.
type Convention struct {
	Name            string
	DayCount        string
	FrequencyMonths int // 0 means a single period from start to end
	Calendar        calendar.CalendarID
	Roll            calendar.Roll
}

// Validate checks the day count and frequency.
func (c Convention) Validate() error {
	if err := utils.CheckDayCount(c.DayCount); err != nil {
		return fmt.Errorf("%w: convention %s: %v", curve.ErrConfiguration, c.Name, err)
	}
	if c.FrequencyMonths < 0 {
		return fmt.Errorf("%w: convention %s: negative frequency", curve.ErrConfiguration, c.Name)
	}
	return nil
}

// Preset conventions. Names follow CCY-INDEX-TENOR for floating legs and CCY-FIXED-FREQ for fixed legs.
var presets = []Convention{
	{Name: "ACT360", DayCount: utils.Act360, Calendar: calendar.NONE, Roll: calendar.ModifiedFollowing},
	{Name: "ACT365F", DayCount: utils.Act365F, Calendar: calendar.NONE, Roll: calendar.ModifiedFollowing},

	{Name: "USD-OIS", DayCount: utils.Act360, FrequencyMonths: 12, Calendar: calendar.USD, Roll: calendar.ModifiedFollowing},
	{Name: "USD-LIBOR-3M", DayCount: utils.Act360, FrequencyMonths: 3, Calendar: calendar.USD, Roll: calendar.ModifiedFollowing},
	{Name: "USD-LIBOR-6M", DayCount: utils.Act360, FrequencyMonths: 6, Calendar: calendar.USD, Roll: calendar.ModifiedFollowing},
	{Name: "USD-FIXED-6M", DayCount: utils.Dc30360, FrequencyMonths: 6, Calendar: calendar.USD, Roll: calendar.ModifiedFollowing},
	{Name: "USD-FIXED-1Y", DayCount: utils.Act360, FrequencyMonths: 12, Calendar: calendar.USD, Roll: calendar.ModifiedFollowing},

	{Name: "EUR-ESTR", DayCount: utils.Act360, FrequencyMonths: 12, Calendar: calendar.TARGET, Roll: calendar.ModifiedFollowing},
	{Name: "EUR-EURIBOR-3M", DayCount: utils.Act360, FrequencyMonths: 3, Calendar: calendar.TARGET, Roll: calendar.ModifiedFollowing},
	{Name: "EUR-EURIBOR-6M", DayCount: utils.Act360, FrequencyMonths: 6, Calendar: calendar.TARGET, Roll: calendar.ModifiedFollowing},
	{Name: "EUR-FIXED-1Y", DayCount: utils.Dc30E, FrequencyMonths: 12, Calendar: calendar.TARGET, Roll: calendar.ModifiedFollowing},

	{Name: "GBP-SONIA", DayCount: utils.Act365F, FrequencyMonths: 12, Calendar: calendar.GBP, Roll: calendar.ModifiedFollowing},

	{Name: "JPY-TONAR", DayCount: utils.Act365F, FrequencyMonths: 12, Calendar: calendar.JPN, Roll: calendar.ModifiedFollowing},
	{Name: "JPY-TIBOR-6M", DayCount: utils.Act365F, FrequencyMonths: 6, Calendar: calendar.JPN, Roll: calendar.ModifiedFollowing},
	{Name: "JPY-FIXED-6M", DayCount: utils.Act365F, FrequencyMonths: 6, Calendar: calendar.JPN, Roll: calendar.ModifiedFollowing},

	{Name: "KRW-CD-3M", DayCount: utils.Act365F, FrequencyMonths: 3, Calendar: calendar.KRW, Roll: calendar.ModifiedFollowing},
}

var (
	conventionsMu sync.RWMutex
	conventions   = func() map[string]Convention {
		m := make(map[string]Convention, len(presets))
		for _, c := range presets {
			m[c.Name] = c
		}
		return m
	}()
)

// RegisterConvention adds or replaces a named convention.
func RegisterConvention(c Convention) error {
	if c.Name == "" {
		return fmt.Errorf("%w: convention name is required", curve.ErrConfiguration)
	}
	if c.Roll == "" {
		c.Roll = calendar.ModifiedFollowing
	}
	if c.Calendar == "" {
		c.Calendar = calendar.NONE
	}
	if err := c.Validate(); err != nil {
		return err
	}
	conventionsMu.Lock()
	defer conventionsMu.Unlock()
	conventions[c.Name] = c
	return nil
}

// LookupConvention returns the named convention.
func LookupConvention(name string) (Convention, error) {
	conventionsMu.RLock()
	defer conventionsMu.RUnlock()
	c, ok := conventions[name]
	if !ok {
		return Convention{}, fmt.Errorf("%w: unknown convention %q", curve.ErrConfiguration, name)
	}
	return c, nil
}

// ConventionNames lists registered conventions, sorted.
func ConventionNames() []string {
	conventionsMu.RLock()
	defer conventionsMu.RUnlock()
	out := make([]string, 0, len(conventions))
	for name := range conventions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
