package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentsByDayClone(t *testing.T) {
	orig := AppointmentsByDay{
		5: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}},
	}

	clone := orig.Clone()
	clone[6] = []Appointment{{Patient: "Ann", Doctor: "Dr. Kim", Time: "10:00"}}
	delete(clone, 5)

	assert.Len(t, orig, 1)
	assert.Contains(t, orig, 5)
	assert.NotContains(t, orig, 6)
}

func TestAppointmentsByDayDaysAndCount(t *testing.T) {
	a := AppointmentsByDay{
		17: {{Patient: "A"}},
		2:  {{Patient: "B"}, {Patient: "C"}},
		9:  {{Patient: "D"}},
	}
	assert.Equal(t, []int{2, 9, 17}, a.Days())
	assert.Equal(t, 4, a.Count())
	assert.Empty(t, AppointmentsByDay{}.Days())
}

func TestAppointmentsByDayJSONUsesDecimalKeys(t *testing.T) {
	a := AppointmentsByDay{
		5: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}},
	}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"5":[{"patient":"Jo","doctor":"Dr. Lee","time":"09:00"}]}`, string(b))
}

func TestFilterCriteriaValidate(t *testing.T) {
	assert.NoError(t, FilterCriteria{Kind: FilterAll}.Validate())
	assert.NoError(t, FilterCriteria{Kind: FilterDoctor, Value: "lee"}.Validate())
	assert.NoError(t, FilterCriteria{Kind: FilterPatient}.Validate())
	assert.Error(t, FilterCriteria{Kind: "time"}.Validate())
	assert.Error(t, FilterCriteria{}.Validate())
}

func TestValidDay(t *testing.T) {
	assert.False(t, ValidDay(0))
	assert.True(t, ValidDay(1))
	assert.True(t, ValidDay(31))
	assert.False(t, ValidDay(32))
}

func TestCalendarCell(t *testing.T) {
	assert.True(t, EmptyCell.IsEmpty())
	assert.False(t, DayCell(1).IsEmpty())
	assert.Equal(t, 14, DayCell(14).Day)
}
