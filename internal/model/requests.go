package model

// OpenFormRequest addresses a day, and for edits an entry of that day.
type OpenFormRequest struct {
	Day   int  `json:"day" binding:"required,min=1,max=31"`
	Index *int `json:"index" binding:"omitempty,min=0"`
}

// SubmitAppointmentRequest carries the form fields. Blank checks are left to
// the scheduling controller so the form state rules apply.
type SubmitAppointmentRequest struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Time    string `json:"time" binding:"omitempty,clock"`
}

// FilterRequest is the filterChanged intent.
type FilterRequest struct {
	Kind  FilterKind `json:"kind" binding:"required,oneof=all doctor patient"`
	Value string     `json:"value"`
}
