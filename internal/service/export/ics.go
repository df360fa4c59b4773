// Package export renders a month of appointments as an iCalendar feed.
package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
)

const (
	// DefaultDuration is used for DTEND; appointments carry a start only.
	DefaultDuration = 30 * time.Minute

	productID = "-//clinic-calendar//appointments//EN"

	floatingLayout = "20060102T150405"
	clockLayout    = "15:04"
)

type Exporter struct {
	duration time.Duration
	now      func() time.Time
}

func NewExporter(duration time.Duration, now func() time.Time) *Exporter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if now == nil {
		now = time.Now
	}
	return &Exporter{duration: duration, now: now}
}

// Month writes one VEVENT per appointment on a day that exists in anchor's
// month. Times are floating local times. Entries whose time does not parse
// become all-day events.
func (e *Exporter) Month(w io.Writer, anchor time.Time, snap model.AppointmentsByDay) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("Clinic appointments " + anchor.Format(calendar.MonthLayout))

	stamp := e.now()
	days := calendar.DaysInMonth(anchor)
	for _, day := range snap.Days() {
		if day > days {
			continue
		}
		date := time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
		for i, appt := range snap[day] {
			ev := cal.AddEvent(eventUID(date, i, appt))
			ev.SetDtStampTime(stamp)
			ev.SetSummary(fmt.Sprintf("%s with %s", appt.Patient, appt.Doctor))
			ev.SetDescription(fmt.Sprintf("Patient: %s\nDoctor: %s", appt.Patient, appt.Doctor))

			clock, err := time.Parse(clockLayout, appt.Time)
			if err != nil {
				ev.SetAllDayStartAt(date)
				ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
				continue
			}
			start := date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
			ev.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
			ev.SetProperty(ical.ComponentPropertyDtEnd, start.Add(e.duration).Format(floatingLayout))
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// eventUID is stable for the same entry so re-imports update events instead
// of duplicating them.
func eventUID(date time.Time, index int, appt model.Appointment) string {
	name := fmt.Sprintf("%s/%d/%s/%s/%s", date.Format("2006-01-02"), index, appt.Patient, appt.Doctor, appt.Time)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@clinic-calendar"
}
