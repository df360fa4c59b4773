package model

// Directory lists the patients and doctors offered by the appointment form.
type Directory struct {
	Patients []string `json:"patients"`
	Doctors  []string `json:"doctors"`
}
