package attendance

import (
	"strconv"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"

	"portal/backend/internal/entity"
	"portal/backend/internal/pkg/repository/spreadsheet"
)

type CheckInRequest struct {
	EmployeeCode string `json:"employee_code"`
	Status       string `json:"status"`
	LocationLink string `json:"location_link"`
}

type LeaveRequest struct {
	EmployeeCode string `json:"employee_code"`
	Reason       string `json:"reason"`
}

const (
	colAttendanceID = "Attendance ID"
	colEmployeeName = "Employee Name"
	colEmployeeCode = "Employee Code"
	colDesignation  = "Designation"
	colDate         = "Date"
	colStatus       = "Status"
	colCheckInTime  = "Check-in Time"
	colCheckOutTime = "Check-out Time"
	colLocationLink = "Location Link"
	colLeaveReason  = "Leave Reason"
	colDuration     = "Duration (minutes)"
)

// Columns is the persisted layout of the Attendance collection. Unseen
// extra columns are tolerated by the store; these must be present.
var Columns = []string{
	colAttendanceID,
	colEmployeeName,
	colEmployeeCode,
	colDesignation,
	colDate,
	colStatus,
	colCheckInTime,
	colCheckOutTime,
	colLocationLink,
	colLeaveReason,
	colDuration,
}

const (
	dateFormat = "02-01-2006"
	timeFormat = "15:04:05"
)

func toRow(record entity.AttendanceRecord) spreadsheet.Row {
	duration := ""
	if record.DurationMinutes != nil {
		duration = strconv.FormatFloat(*record.DurationMinutes, 'f', -1, 64)
	}

	return spreadsheet.Row{
		colAttendanceID: record.AttendanceID,
		colEmployeeName: record.EmployeeName,
		colEmployeeCode: record.EmployeeCode,
		colDesignation:  record.Designation,
		colDate:         record.Date.Format(dateFormat),
		colStatus:       record.Status,
		colCheckInTime:  record.CheckInTime,
		colCheckOutTime: record.CheckOutTime,
		colLocationLink: record.LocationLink,
		colLeaveReason:  record.LeaveReason,
		colDuration:     duration,
	}
}

// fromRow builds the typed record back from a stored row. The date is
// parsed into a normalized calendar-day value so that "today" checks
// never compare raw formatted strings from two different sources. The
// stored duration is carried along for display but recomputation always
// goes back to the check-in and check-out times.
func fromRow(row spreadsheet.Row) (entity.AttendanceRecord, error) {
	day, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return entity.AttendanceRecord{}, errors.Wrapf(err, "attendance %q: parsing date %q", row[colAttendanceID], row[colDate])
	}

	record := entity.AttendanceRecord{
		AttendanceID: row[colAttendanceID],
		EmployeeName: row[colEmployeeName],
		EmployeeCode: row[colEmployeeCode],
		Designation:  row[colDesignation],
		Date:         date.Date{Time: day},
		Status:       row[colStatus],
		CheckInTime:  row[colCheckInTime],
		CheckOutTime: row[colCheckOutTime],
		LocationLink: row[colLocationLink],
		LeaveReason:  row[colLeaveReason],
	}

	if raw := row[colDuration]; raw != "" {
		minutes, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return entity.AttendanceRecord{}, errors.Wrapf(err, "attendance %q: parsing duration %q", record.AttendanceID, raw)
		}
		record.DurationMinutes = &minutes
	}

	return record, nil
}
