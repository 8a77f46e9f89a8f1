// Package stats holds the calendar and rollup math behind the stats endpoint.
package stats

import (
	"alcyxob/fitness-tracker/internal/domain"
	"fmt"
	"math"
	"strings"
	"time"
)

// Windows are the time ranges a stats snapshot is computed over. All have
// exclusive upper bounds.
type Windows struct {
	ThisWeek domain.TimeWindow
	LastWeek domain.TimeWindow
	Today    domain.TimeWindow
}

// Calendar fixes the zone and first weekday used for week boundaries.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar parses an IANA zone name and a weekday name ("sunday", "mon", ...).
func NewCalendar(timezone, weekStart string) (Calendar, error) {
	loc := time.UTC
	if tz := strings.TrimSpace(timezone); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return Calendar{}, fmt.Errorf("stats timezone %q: %w", timezone, err)
		}
	}
	day, err := ParseWeekday(weekStart)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{Location: loc, WeekStart: day}, nil
}

// ParseWeekday accepts full or three-letter English day names. Blank means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// DayStart is local midnight of the day containing now.
func (c Calendar) DayStart(now time.Time) time.Time {
	t := now.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek is the most recent local midnight falling on the first weekday,
// which is today's midnight when today is that weekday.
func (c Calendar) StartOfWeek(now time.Time) time.Time {
	day := c.DayStart(now)
	back := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// Windows returns [weekStart, now), [weekStart-7d, weekStart) and [dayStart, now).
func (c Calendar) Windows(now time.Time) Windows {
	weekStart := c.StartOfWeek(now)
	prevStart := weekStart.AddDate(0, 0, -7)
	dayStart := c.DayStart(now)
	return Windows{
		ThisWeek: window(weekStart, now),
		LastWeek: window(prevStart, weekStart),
		Today:    window(dayStart, now),
	}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func window(from, to time.Time) domain.TimeWindow {
	return domain.TimeWindow{From: &from, To: &to}
}

// PercentChange compares current to previous. A zero previous yields 100 when
// current is positive and 0 otherwise.
func PercentChange(current, previous int64) int64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int64(math.Round(float64(current-previous) / float64(previous) * 100))
}
