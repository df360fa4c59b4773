package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Patient string `json:"patient" validate:"notblank"`
	Time    string `json:"time" validate:"notblank,clock"`
}

func TestValidateNotBlank(t *testing.T) {
	v := New()

	err := v.Validate(form{Patient: "   ", Time: "09:00"})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"patient"}, errs.Fields())
	assert.Equal(t, "patient is required", errs.Error())
}

func TestValidateClock(t *testing.T) {
	v := New()

	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"00:00", true},
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"9:30", false},
		{"09:60", false},
		{"noon", false},
	} {
		err := v.Validate(form{Patient: "Jo", Time: tc.value})
		if tc.ok {
			assert.NoError(t, err, tc.value)
		} else {
			assert.Error(t, err, tc.value)
		}
	}
}

func TestValidateField(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateField("doctor", "Dr. Lee", "notblank"))

	err := v.ValidateField("doctor", "", "notblank")
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "doctor", errs[0].Field)
}
