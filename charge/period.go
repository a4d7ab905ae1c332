package charge

import (
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Date interval, also used as the grouping key for repayment periods
// =============================================================================

// Period is a date interval [Begin, End). It is comparable, so it can key
// a map directly. The charge engine never looks inside a repayment period;
// only action periods are measured.
type Period struct {
	Begin time.Time
	End   time.Time
}

// NewPeriod builds a period from two calendar dates (UTC midnight).
func NewPeriod(begin, end time.Time) Period {
	return Period{Begin: truncateToDate(begin), End: truncateToDate(end)}
}

// PeriodOfDays returns the period starting at begin and lasting n days.
func PeriodOfDays(begin time.Time, n int) Period {
	b := truncateToDate(begin)
	return Period{Begin: b, End: b.AddDate(0, 0, n)}
}

// Normalized returns p with both bounds at UTC midnight of their calendar
// date. Periods built by NewPeriod are already normalized; literals may not
// be, and time.Time equality also compares the location.
func (p Period) Normalized() Period {
	return NewPeriod(p.Begin, p.End)
}

// Days returns the whole number of days from Begin to End.
// Negative when End precedes Begin.
func (p Period) Days() int {
	return int(truncateToDate(p.End).Sub(truncateToDate(p.Begin)).Hours() / 24)
}

// Duration is Days expressed as a time.Duration of 24h days.
func (p Period) Duration() time.Duration {
	return time.Duration(p.Days()) * 24 * time.Hour
}

// IsValid reports whether End is not before Begin.
func (p Period) IsValid() bool { return !p.End.Before(p.Begin) }

func (p Period) String() string {
	return "[" + p.Begin.Format(time.DateOnly) + ", " + p.End.Format(time.DateOnly) + ")"
}

// Before orders periods by Begin, then End.
func (p Period) Before(other Period) bool {
	if p.Begin.Equal(other.Begin) {
		return p.End.Before(other.End)
	}
	return p.Begin.Before(other.Begin)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// CHRONO UNIT - Calendar unit a charge amount is quoted over
// =============================================================================

// ChronoUnit is the calendar unit over which a charge's nominal amount is
// defined. The empty unit means the charge is not time-prorated.
type ChronoUnit string

const (
	UnitNone   ChronoUnit = ""
	UnitDays   ChronoUnit = "DAYS"
	UnitWeeks  ChronoUnit = "WEEKS"
	UnitMonths ChronoUnit = "MONTHS"
	UnitYears  ChronoUnit = "YEARS"
)

// Estimated unit lengths. The year is 365 days; a month is a twelfth of it.
const (
	day   = 24 * time.Hour
	week  = 7 * day
	year  = 365 * day
	month = year / 12
)

var unitDurations = map[ChronoUnit]time.Duration{
	UnitDays:   day,
	UnitWeeks:  week,
	UnitMonths: month,
	UnitYears:  year,
}

// Duration returns the estimated length of the unit. UnitNone counts as one
// year. Unknown units return ErrUnknownChronoUnit.
func (u ChronoUnit) Duration() (time.Duration, error) {
	if u == UnitNone {
		return year, nil
	}
	d, ok := unitDurations[u]
	if !ok {
		return 0, &UnknownChronoUnitError{Unit: string(u)}
	}
	return d, nil
}

// ParseChronoUnit accepts unit names in any case. The empty string parses
// to UnitNone.
func ParseChronoUnit(s string) (ChronoUnit, error) {
	u := ChronoUnit(strings.ToUpper(strings.TrimSpace(s)))
	if u == UnitNone {
		return UnitNone, nil
	}
	if _, ok := unitDurations[u]; !ok {
		return UnitNone, &UnknownChronoUnitError{Unit: s}
	}
	return u, nil
}
