// Package calendar builds month grids for the appointment calendar.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-calendar/internal/model"
)

// MonthLayout is the format of month anchors on the wire.
const MonthLayout = "2006-01"

// Builder produces calendar cells for a month.
type Builder struct {
	weekStart time.Weekday
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithWeekStart sets the weekday shown in the first column.
func WithWeekStart(d time.Weekday) Option {
	return func(b *Builder) { b.weekStart = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{weekStart: time.Sunday, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ParseWeekStart accepts "sunday" or "monday"; empty means sunday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("unsupported week start %q", s)
	}
}

// Build returns the leading empty cells followed by one cell per day of the
// anchor's month. The last week is not padded.
func (b *Builder) Build(anchor time.Time) []model.CalendarCell {
	offset := b.WeekdayOffset(anchor)
	days := DaysInMonth(anchor)

	cells := make([]model.CalendarCell, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, model.EmptyCell)
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, model.DayCell(day))
	}
	return cells
}

// WeekdayOffset is the column (0..6) of the first of the anchor's month.
func (b *Builder) WeekdayOffset(anchor time.Time) int {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) - int(b.weekStart) + 7) % 7
}

// Weekdays returns the column order of the grid.
func (b *Builder) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(b.weekStart) + i) % 7)
	}
	return out
}

// IsToday matches the day of month only; month and year are ignored, so a
// day in another month with the same number also reports true.
func (b *Builder) IsToday(day int) bool {
	return day == b.now().Day()
}

// Now exposes the builder clock.
func (b *Builder) Now() time.Time {
	return b.now()
}

// DaysInMonth returns the number of days of the anchor's month.
func DaysInMonth(anchor time.Time) int {
	return time.Date(anchor.Year(), anchor.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseMonth parses a YYYY-MM anchor. An empty string yields the month of now.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM: %w", s, err)
	}
	return t, nil
}
