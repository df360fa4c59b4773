package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/jwalitptl/clinic-calendar/internal/model"
)

const cellWidth = 4

// Printer renders views for a terminal.
type Printer struct {
	Out io.Writer
}

// Day prints the entries of one day with their positions, which are what
// edit and rm expect.
func (p *Printer) Day(day int, list []model.IndexedAppointment) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintf(p.Out, "Day %d\n", day)
	if len(list) == 0 {
		_, _ = faint.Fprintln(p.Out, "  no appointments")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("Time"), bold.Sprint("Patient"), bold.Sprint("Doctor"))
	for _, a := range list {
		tbl.AddRow(a.Index, a.Time, a.Patient, a.Doctor)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.Out, tbl)
}

// Month prints a week grid. Days with visible appointments are bold and
// today is underlined.
func (p *Printer) Month(view model.MonthView) {
	title := color.New(color.FgWhite, color.Italic)
	head := color.New(color.Faint)
	quiet := color.New(color.Faint, color.FgWhite)
	busy := color.New(color.Bold, color.FgHiWhite)

	width := len(view.Weekdays) * cellWidth
	mid := (width - len(view.Month)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = title.Fprintf(p.Out, "%s%s\n", strings.Repeat(" ", mid), view.Month)

	for _, d := range view.Weekdays {
		_, _ = head.Fprintf(p.Out, "%*s", cellWidth, d[:2])
	}
	_, _ = fmt.Fprintln(p.Out)

	for i, v := range view.Days {
		switch {
		case v.Empty:
			_, _ = fmt.Fprint(p.Out, strings.Repeat(" ", cellWidth))
		default:
			c := quiet
			if len(v.Appointments) > 0 {
				c = busy
			}
			if v.Today {
				c = color.New(color.Underline, color.Bold)
			}
			cell := fmt.Sprintf("%d", v.Cell.Day)
			if n := len(v.Appointments); n > 0 {
				cell = fmt.Sprintf("%d*", v.Cell.Day)
			}
			_, _ = fmt.Fprint(p.Out, strings.Repeat(" ", cellWidth-len(cell)))
			_, _ = c.Fprint(p.Out, cell)
		}
		if (i+1)%len(view.Weekdays) == 0 {
			_, _ = fmt.Fprintln(p.Out)
		}
	}
	_, _ = fmt.Fprintln(p.Out)
	if view.Filter.Kind != model.FilterAll {
		_, _ = head.Fprintf(p.Out, "filtered by %s %q\n", view.Filter.Kind, view.Filter.Value)
	}
}

func (p *Printer) Directory(dir model.Directory) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Patients"), bold.Sprint("Doctors"))
	rows := len(dir.Patients)
	if len(dir.Doctors) > rows {
		rows = len(dir.Doctors)
	}
	for i := 0; i < rows; i++ {
		var patient, doctor string
		if i < len(dir.Patients) {
			patient = dir.Patients[i]
		}
		if i < len(dir.Doctors) {
			doctor = dir.Doctors[i]
		}
		tbl.AddRow(patient, doctor)
	}
	_, _ = fmt.Fprintln(p.Out, tbl)
}
