package entity

import (
	"github.com/Azure/go-autorest/autorest/date"
)

// Attendance statuses as they are persisted in the Attendance collection.
const (
	StatusPresent = "Present"
	StatusHalfDay = "Half Day"
	StatusLeave   = "Leave"
)

// AttendanceRecord is one row of the Attendance collection: a single
// check-in event (or leave request) per employee per calendar day.
// CheckOutTime and Duration stay empty until the employee checks out;
// LeaveReason is populated only when Status is Leave.
type AttendanceRecord struct {
	AttendanceID    string    `json:"attendance_id"`
	EmployeeName    string    `json:"employee_name"`
	EmployeeCode    string    `json:"employee_code"`
	Designation     string    `json:"designation"`
	Date            date.Date `json:"date"`
	Status          string    `json:"status"`
	CheckInTime     string    `json:"check_in_time,omitempty"`
	CheckOutTime    string    `json:"check_out_time,omitempty"`
	LocationLink    string    `json:"location_link,omitempty"`
	LeaveReason     string    `json:"leave_reason,omitempty"`
	DurationMinutes *float64  `json:"duration_minutes,omitempty"`
}

// Open reports whether the record is a check-in still waiting for its
// check-out. Leave records never open a check-in cycle.
func (r AttendanceRecord) Open() bool {
	return r.Status != StatusLeave && r.CheckInTime != "" && r.CheckOutTime == ""
}
