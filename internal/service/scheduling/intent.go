package scheduling

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	apperrors "github.com/jwalitptl/clinic-calendar/pkg/errors"
)

type IntentKind string

const (
	IntentOpenCreate    IntentKind = "open_create"
	IntentOpenEdit      IntentKind = "open_edit"
	IntentSubmit        IntentKind = "submit"
	IntentClose         IntentKind = "close"
	IntentDelete        IntentKind = "delete"
	IntentFilterChanged IntentKind = "filter_changed"
)

// Intent is a user action emitted by a display layer. Only the fields the
// kind needs are read.
type Intent struct {
	Kind        IntentKind           `json:"kind"`
	Day         int                  `json:"day,omitempty"`
	Index       int                  `json:"index,omitempty"`
	Appointment model.Appointment    `json:"appointment"`
	Filter      model.FilterCriteria `json:"filter"`
}

// Dispatch applies one intent. open_edit takes the entry to pre-fill from
// the current snapshot rather than from the intent.
func (c *Controller) Dispatch(ctx context.Context, in Intent) error {
	switch in.Kind {
	case IntentOpenCreate:
		return c.OpenCreateForm(in.Day)
	case IntentOpenEdit:
		list := c.state.Snapshot[in.Day]
		if in.Index < 0 || in.Index >= len(list) {
			return apperrors.NewIndexOutOfRange(in.Day, in.Index)
		}
		return c.OpenEditForm(in.Day, in.Index, list[in.Index])
	case IntentSubmit:
		a := in.Appointment
		return c.Submit(ctx, a.Patient, a.Doctor, a.Time)
	case IntentClose:
		c.CloseForm()
		return nil
	case IntentDelete:
		return c.DeleteEntry(ctx, in.Day, in.Index)
	case IntentFilterChanged:
		return c.SetFilter(in.Filter)
	default:
		return apperrors.NewBadRequest(fmt.Sprintf("unknown intent %q", in.Kind), nil)
	}
}
