package model

// CalendarCell is one slot of a month grid. Day is zero for the leading
// placeholders before the first of the month.
type CalendarCell struct {
	Day int `json:"day,omitempty"`
}

// EmptyCell is the leading placeholder.
var EmptyCell = CalendarCell{}

// DayCell returns the cell for a day of month.
func DayCell(day int) CalendarCell {
	return CalendarCell{Day: day}
}

func (c CalendarCell) IsEmpty() bool {
	return c.Day == 0
}

// DayView is what a renderer needs for one grid cell.
type DayView struct {
	Cell         CalendarCell         `json:"cell"`
	Empty        bool                 `json:"empty"`
	Today        bool                 `json:"today,omitempty"`
	Appointments []IndexedAppointment `json:"appointments,omitempty"`
}

// MonthView is a rendered month: column headers, grid and filter in effect.
type MonthView struct {
	Month    string         `json:"month"`
	Weekdays []string       `json:"weekdays"`
	Offset   int            `json:"offset"`
	Filter   FilterCriteria `json:"filter"`
	Days     []DayView      `json:"days"`
}
