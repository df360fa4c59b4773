package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-calendar/internal/model"
)

var day = []model.Appointment{
	{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"},
	{Patient: "Ann", Doctor: "Dr. Kim", Time: "10:00"},
	{Patient: "Joanna", Doctor: "Dr. LEEDS", Time: "11:30"},
}

func TestFilterAllReturnsInputUnchanged(t *testing.T) {
	for _, v := range []string{"", "lee", "nobody", "  "} {
		got := Filter(day, model.FilterCriteria{Kind: model.FilterAll, Value: v})
		assert.Equal(t, day, got)
	}
	assert.Empty(t, Filter(nil, model.FilterCriteria{Kind: model.FilterAll}))
}

func TestFilterEmptyValueMatchesAll(t *testing.T) {
	for _, k := range []model.FilterKind{model.FilterDoctor, model.FilterPatient} {
		got := Filter(day, model.FilterCriteria{Kind: k})
		assert.Equal(t, day, got, string(k))
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(day, model.FilterCriteria{Kind: model.FilterDoctor, Value: "lee"})
	assert.Equal(t, []model.Appointment{day[0], day[2]}, got)

	got = Filter(day, model.FilterCriteria{Kind: model.FilterPatient, Value: "JO"})
	assert.Equal(t, []model.Appointment{day[0], day[2]}, got)

	got = Filter(day, model.FilterCriteria{Kind: model.FilterPatient, Value: "zed"})
	assert.Empty(t, got)
}

func TestFilterDoesNotTouchInput(t *testing.T) {
	in := append([]model.Appointment(nil), day...)
	_ = Filter(in, model.FilterCriteria{Kind: model.FilterDoctor, Value: "kim"})
	assert.Equal(t, day, in)
}

func TestFilterUnicodeFolding(t *testing.T) {
	list := []model.Appointment{{Patient: "Jürgen Straße", Doctor: "Dr. Öz", Time: "08:00"}}
	assert.Len(t, Filter(list, model.FilterCriteria{Kind: model.FilterDoctor, Value: "öZ"}), 1)
	assert.Len(t, Filter(list, model.FilterCriteria{Kind: model.FilterPatient, Value: "JÜRGEN"}), 1)
}

func TestFilterIndexedKeepsOriginalPositions(t *testing.T) {
	got := FilterIndexed(day, model.FilterCriteria{Kind: model.FilterDoctor, Value: "kim"})
	assert.Equal(t, []model.IndexedAppointment{{Index: 1, Appointment: day[1]}}, got)

	all := FilterIndexed(day, model.FilterCriteria{Kind: model.FilterAll})
	assert.Len(t, all, 3)
	for i, ia := range all {
		assert.Equal(t, i, ia.Index)
	}
}
