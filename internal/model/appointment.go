package model

import (
	"fmt"
	"sort"
)

// Valid day-of-month keys.
const (
	MinDay = 1
	MaxDay = 31
)

// Appointment is a value; the store replaces entries instead of editing
// them in place. Time is a 24-hour "HH:MM" clock time.
type Appointment struct {
	Patient string `json:"patient" validate:"notblank"`
	Doctor  string `json:"doctor" validate:"notblank"`
	Time    string `json:"time" validate:"notblank,clock"`
}

// AppointmentsByDay maps a day of month to its appointments in insertion
// order. A key is present only while its list is non-empty.
type AppointmentsByDay map[int][]Appointment

// Clone returns a new map sharing the per-day slices. Callers that change a
// day must install a fresh slice for it.
func (a AppointmentsByDay) Clone() AppointmentsByDay {
	out := make(AppointmentsByDay, len(a))
	for day, list := range a {
		out[day] = list
	}
	return out
}

// Days returns the populated day keys in ascending order.
func (a AppointmentsByDay) Days() []int {
	days := make([]int, 0, len(a))
	for day := range a {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// Count returns the total number of appointments.
func (a AppointmentsByDay) Count() int {
	n := 0
	for _, list := range a {
		n += len(list)
	}
	return n
}

// ValidDay reports whether day can be used as a key.
func ValidDay(day int) bool {
	return day >= MinDay && day <= MaxDay
}

// EditTarget addresses an existing entry of the current snapshot.
type EditTarget struct {
	Day   int `json:"day"`
	Index int `json:"index"`
}

// IndexedAppointment is an entry of a filtered view together with its
// position in the unfiltered day list.
type IndexedAppointment struct {
	Index int `json:"index"`
	Appointment
}

type FilterKind string

const (
	FilterAll     FilterKind = "all"
	FilterDoctor  FilterKind = "doctor"
	FilterPatient FilterKind = "patient"
)

// FilterCriteria selects which appointments are shown. Value is ignored for
// FilterAll.
type FilterCriteria struct {
	Kind  FilterKind `json:"kind"`
	Value string     `json:"value"`
}

// Validate rejects unknown kinds.
func (f FilterCriteria) Validate() error {
	switch f.Kind {
	case FilterAll, FilterDoctor, FilterPatient:
		return nil
	default:
		return fmt.Errorf("unknown filter kind %q", f.Kind)
	}
}
