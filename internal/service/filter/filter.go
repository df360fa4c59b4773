// Package filter narrows day lists for display.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jwalitptl/clinic-calendar/internal/model"
)

// Filter returns the appointments matching c, in input order. FilterAll and
// unknown kinds return list itself.
func Filter(list []model.Appointment, c model.FilterCriteria) []model.Appointment {
	if c.Kind != model.FilterDoctor && c.Kind != model.FilterPatient {
		return list
	}
	out := make([]model.Appointment, 0, len(list))
	for _, a := range list {
		if Matches(a, c) {
			out = append(out, a)
		}
	}
	return out
}

// FilterIndexed is Filter keeping each match's position in list.
func FilterIndexed(list []model.Appointment, c model.FilterCriteria) []model.IndexedAppointment {
	out := make([]model.IndexedAppointment, 0, len(list))
	for i, a := range list {
		if Matches(a, c) {
			out = append(out, model.IndexedAppointment{Index: i, Appointment: a})
		}
	}
	return out
}

// Matches reports whether the field named by c.Kind contains c.Value,
// ignoring case. An empty value matches everything.
func Matches(a model.Appointment, c model.FilterCriteria) bool {
	var field string
	switch c.Kind {
	case model.FilterDoctor:
		field = a.Doctor
	case model.FilterPatient:
		field = a.Patient
	default:
		return true
	}
	if c.Value == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(field), fold.String(c.Value))
}
