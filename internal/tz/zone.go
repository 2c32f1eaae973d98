// Package tz converts between the project's fixed local timezone and UTC.
//
// Every persisted timestamp is UTC. Human-facing calculations ("due tomorrow",
// "end of the deadline day") happen in the project zone and the resulting
// bounds are converted back to UTC before they reach storage.
//
// DST: wall-clock times that fall into a spring-forward gap are normalized
// forward by time.Date (02:30 becomes 03:30), and ambiguous fall-back times
// resolve to the first occurrence. Deadlines use 23:59:59 and day windows use
// midnight, neither of which is affected in zones that switch at 02:00/03:00.
package tz

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05 MST"
)

// Zone is the project timezone together with the clock it reads "now" from.
type Zone struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Zone)

// WithClock replaces time.Now. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(z *Zone) { z.now = now }
}

// New loads the IANA zone name. An empty name means UTC.
func New(name string, opts ...Option) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewWithLocation(loc, opts...), nil
}

func NewWithLocation(loc *time.Location, opts ...Option) *Zone {
	z := &Zone{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

func (z *Zone) Location() *time.Location { return z.loc }

func (z *Zone) NowUTC() time.Time { return z.now().UTC() }

func (z *Zone) NowLocal() time.Time { return z.now().In(z.loc) }

// ToUTC normalizes an instant to UTC.
func (z *Zone) ToUTC(t time.Time) time.Time { return t.UTC() }

// Attach reinterprets the wall-clock fields of a zone-less value in loc. A nil
// loc means the project zone. The instant changes; the wall clock does not.
func (z *Zone) Attach(wall time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = z.loc
	}
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
}

// LocalToUTC treats wall as project-local time and returns the UTC instant.
func (z *Zone) LocalToUTC(wall time.Time) time.Time {
	return z.Attach(wall, nil).UTC()
}

// ToUTCFrom treats wall as local time in the named zone.
func (z *Zone) ToUTCFrom(wall time.Time, zoneName string) (time.Time, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", zoneName, err)
	}
	return z.Attach(wall, loc).UTC(), nil
}

// ToLocal converts an instant to the project zone.
func (z *Zone) ToLocal(t time.Time) time.Time { return t.In(z.loc) }

func (z *Zone) ToZone(t time.Time, zoneName string) (time.Time, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", zoneName, err)
	}
	return t.In(loc), nil
}

func (z *Zone) Format(t time.Time, layout string) string {
	return z.ToLocal(t).Format(layout)
}

// LocalDate is the project-zone calendar date of t as YYYY-MM-DD.
func (z *Zone) LocalDate(t time.Time) string {
	return z.Format(t, DateLayout)
}

// EndOfLocalDay returns 23:59:59 of the given local calendar day, in UTC.
func (z *Zone) EndOfLocalDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 0, z.loc).UTC()
}

// ParseLocalDate parses YYYY-MM-DD as a project-local calendar date and
// returns the end of that day in UTC.
func (z *Zone) ParseLocalDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, z.loc)
	if err != nil {
		return time.Time{}, err
	}
	return z.EndOfLocalDay(d.Year(), d.Month(), d.Day()), nil
}

// ParseDeadline resolves a draft deadline string. Unparseable or empty input
// falls back to the fallback date, which must itself be YYYY-MM-DD.
func (z *Zone) ParseDeadline(s, fallback string) (time.Time, error) {
	if s != "" {
		if t, err := z.ParseLocalDate(s); err == nil {
			return t, nil
		}
	}
	t, err := z.ParseLocalDate(fallback)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fallback deadline %q: %w", fallback, err)
	}
	return t, nil
}

// Window is a half-open [Start, End) range of UTC instants.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow returns the UTC bounds of the local calendar day containing local,
// shifted by offsetDays.
func (z *Zone) DayWindow(local time.Time, offsetDays int) Window {
	local = local.In(z.loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+offsetDays, 0, 0, 0, 0, z.loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+offsetDays+1, 0, 0, 0, 0, z.loc)
	return Window{Start: start.UTC(), End: end.UTC()}
}

// TomorrowWindow is the UTC range covering the next project-local calendar day.
func (z *Zone) TomorrowWindow() Window {
	return z.DayWindow(z.NowLocal(), 1)
}
