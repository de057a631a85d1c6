package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrPastDate            = errors.New("appointment date is in the past")
	ErrSlotConflict        = errors.New("a scheduled appointment already overlaps this time")
	ErrNotScheduled        = errors.New("appointment is not scheduled")
)
