package interval

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone rules ship with the binary
)

const (
	DateLayout    = "2006-01-02"
	MinutesPerDay = 24 * 60
)

// Zone pins calendar arithmetic (weekday, hour of day, local dates) to one
// explicitly configured location.
type Zone struct {
	loc *time.Location
}

// LoadZone resolves an IANA zone name. The empty name is rejected so that the
// process-local zone is never picked up implicitly.
func LoadZone(name string) (*Zone, error) {
	if name == "" {
		return nil, fmt.Errorf("time zone name is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return &Zone{loc: loc}, nil
}

// NewZone wraps an already resolved location.
func NewZone(loc *time.Location) *Zone {
	return &Zone{loc: loc}
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

func (z *Zone) String() string {
	return z.loc.String()
}

func (z *Zone) Weekday(t time.Time) time.Weekday {
	return t.In(z.loc).Weekday()
}

func (z *Zone) HourOfDay(t time.Time) int {
	return t.In(z.loc).Hour()
}

// MinuteOfDay is the wall-clock minute offset of t from local midnight.
func (z *Zone) MinuteOfDay(t time.Time) int {
	lt := t.In(z.loc)
	return lt.Hour()*60 + lt.Minute()
}

// LocalMinutes returns the wall-clock offsets of iv's start and end measured
// from the local midnight of the start date. An end falling on a later local
// date is offset by whole days, so it exceeds MinutesPerDay. The start is
// floored and the end is rounded up to a whole minute, so the minute range
// always covers iv.
func (z *Zone) LocalMinutes(iv Interval) (start, end int) {
	ls, le := iv.Start.In(z.loc), iv.End.In(z.loc)
	start = ls.Hour()*60 + ls.Minute()
	end = le.Hour()*60 + le.Minute()
	if le.Second() != 0 || le.Nanosecond() != 0 {
		end++
	}

	sy, sm, sd := ls.Date()
	ey, em, ed := le.Date()
	startDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	days := int(endDay.Sub(startDay).Hours() / 24)
	return start, end + days*MinutesPerDay
}

// ParseDate parses a YYYY-MM-DD calendar date as local midnight.
func (z *Zone) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, z.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// At returns the instant at the given wall-clock hour on date's local day.
func (z *Zone) At(date time.Time, hour int) time.Time {
	y, m, d := date.In(z.loc).Date()
	return time.Date(y, m, d, hour, 0, 0, 0, z.loc)
}

// Day returns the interval covering date's whole local day.
func (z *Zone) Day(date time.Time) Interval {
	y, m, d := date.In(z.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, z.loc)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// Dates lists the local calendar dates (YYYY-MM-DD) touched by iv.
func (z *Zone) Dates(iv Interval) []string {
	var dates []string
	for day := z.Day(iv.Start); day.Start.Before(iv.End); day = z.Day(day.End) {
		dates = append(dates, day.Start.Format(DateLayout))
	}
	return dates
}
