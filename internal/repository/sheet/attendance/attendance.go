package attendance

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"portal/backend/internal/entity"
	"portal/backend/internal/pkg/repository/spreadsheet"
)

// Collection holds one row per check-in event per employee per day.
const Collection = "Attendance"

// Business-rule rejections. These are expected outcomes surfaced to the
// caller as typed errors, not store faults: they are never retried.
var (
	ErrDuplicateAttendance = errors.New("attendance already recorded for today")
	ErrNoOpenCheckIn       = errors.New("no open check-in for today")
	ErrAlreadyCheckedOut   = errors.New("already checked out today")
	ErrInvalidStatus       = errors.New("invalid attendance status")

	// ErrClockSkew guards duration integrity: a check-out that lands
	// before its check-in is persisted with a blank duration and
	// flagged, never stored as a negative number.
	ErrClockSkew = errors.New("check-out time precedes check-in time")
)

// Directory resolves the display name and designation attached to every
// attendance row. Lookups key on the employee code.
type Directory interface {
	LookupByCode(ctx context.Context, employeeCode string) (entity.Employee, error)
}

// Repository drives the per-employee-per-day attendance lifecycle:
// no record -> checked in -> checked out, or no record -> on leave.
// All writes go through the safe writer; "today" is always computed in
// the single configured zone.
type Repository struct {
	store     spreadsheet.Store
	writer    *spreadsheet.Writer
	directory Directory
	zone      *time.Location
	now       func() time.Time
}

type Option func(*Repository)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(store spreadsheet.Store, writer *spreadsheet.Writer, directory Directory, zone *time.Location, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		writer:    writer,
		directory: directory,
		zone:      zone,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckIn opens today's attendance cycle for the employee. Exactly one
// record per employee per day: any existing record for today, including
// a leave request, rejects the attempt with ErrDuplicateAttendance.
func (r *Repository) CheckIn(ctx context.Context, request CheckInRequest) (entity.AttendanceRecord, error) {
	if request.Status != entity.StatusPresent && request.Status != entity.StatusHalfDay {
		return entity.AttendanceRecord{}, errors.Wrapf(ErrInvalidStatus, "%q", request.Status)
	}

	employee, err := r.directory.LookupByCode(ctx, request.EmployeeCode)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	now, today := r.today()

	if _, _, err := r.findToday(ctx, request.EmployeeCode, today); err == nil {
		return entity.AttendanceRecord{}, errors.Wrapf(ErrDuplicateAttendance, "employee %s on %s", request.EmployeeCode, today.Format(dateFormat))
	} else if !errors.Is(err, errNoRecordToday) {
		return entity.AttendanceRecord{}, err
	}

	record := entity.AttendanceRecord{
		AttendanceID: newAttendanceID(now),
		EmployeeName: employee.EmployeeName,
		EmployeeCode: employee.EmployeeCode,
		Designation:  employee.Designation,
		Date:         today,
		Status:       request.Status,
		CheckInTime:  now.Format(timeFormat),
		LocationLink: request.LocationLink,
	}

	err = r.writer.Do(ctx, Collection, func(ctx context.Context) error {
		return r.store.AppendUnique(ctx, Collection, []spreadsheet.Row{toRow(record)}, colAttendanceID)
	})
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	return record, nil
}

// CheckOut closes today's open check-in and fills in the duration. The
// duration is always recomputed from the two times, never trusted from
// the stored row.
func (r *Repository) CheckOut(ctx context.Context, employeeCode string) (entity.AttendanceRecord, error) {
	now, today := r.today()

	rows, err := r.store.Read(ctx, Collection)
	if err != nil {
		return entity.AttendanceRecord{}, errors.Wrap(err, "reading attendance")
	}

	open := -1
	closed := false
	for i, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return entity.AttendanceRecord{}, err
		}
		if record.EmployeeCode != employeeCode || !sameDay(record.Date, today) || record.Status == entity.StatusLeave {
			continue
		}
		if record.Open() {
			open = i
			break
		}
		if record.CheckOutTime != "" {
			closed = true
		}
	}
	if open < 0 {
		if closed {
			return entity.AttendanceRecord{}, errors.Wrapf(ErrAlreadyCheckedOut, "employee %s", employeeCode)
		}
		return entity.AttendanceRecord{}, errors.Wrapf(ErrNoOpenCheckIn, "employee %s", employeeCode)
	}

	// Mutate the row in place and rewrite the whole collection, the
	// only replace primitive the store offers.
	row := rows[open]
	checkIn, err := time.Parse(timeFormat, row[colCheckInTime])
	if err != nil {
		return entity.AttendanceRecord{}, errors.Wrapf(err, "attendance %q: parsing check-in time %q", row[colAttendanceID], row[colCheckInTime])
	}
	// Both times land on the parser's reference day, so the difference
	// is purely the clock-time delta within the date.
	checkOut := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)

	row[colCheckOutTime] = now.Format(timeFormat)

	minutes := checkOut.Sub(checkIn).Minutes()
	skewed := minutes < 0
	if skewed {
		row[colDuration] = ""
	} else {
		row[colDuration] = strconv.FormatFloat(math.Round(minutes*100)/100, 'f', -1, 64)
	}

	if err := r.writer.Do(ctx, Collection, func(ctx context.Context) error {
		return r.store.Replace(ctx, Collection, rows)
	}); err != nil {
		return entity.AttendanceRecord{}, err
	}

	record, err := fromRow(row)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}
	if skewed {
		return record, errors.Wrapf(ErrClockSkew, "attendance %q", record.AttendanceID)
	}
	return record, nil
}

// RequestLeave writes today's terminal leave record. Leave has no
// check-in/check-out cycle; any existing record for today rejects it.
func (r *Repository) RequestLeave(ctx context.Context, request LeaveRequest) (entity.AttendanceRecord, error) {
	employee, err := r.directory.LookupByCode(ctx, request.EmployeeCode)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	now, today := r.today()

	if _, _, err := r.findToday(ctx, request.EmployeeCode, today); err == nil {
		return entity.AttendanceRecord{}, errors.Wrapf(ErrDuplicateAttendance, "employee %s on %s", request.EmployeeCode, today.Format(dateFormat))
	} else if !errors.Is(err, errNoRecordToday) {
		return entity.AttendanceRecord{}, err
	}

	record := entity.AttendanceRecord{
		AttendanceID: newAttendanceID(now),
		EmployeeName: employee.EmployeeName,
		EmployeeCode: employee.EmployeeCode,
		Designation:  employee.Designation,
		Date:         today,
		Status:       entity.StatusLeave,
		LeaveReason:  request.Reason,
	}

	err = r.writer.Do(ctx, Collection, func(ctx context.Context) error {
		return r.store.AppendUnique(ctx, Collection, []spreadsheet.Row{toRow(record)}, colAttendanceID)
	})
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	return record, nil
}

// Today returns the employee's record for the current day, or nil when
// none exists yet.
func (r *Repository) Today(ctx context.Context, employeeCode string) (*entity.AttendanceRecord, error) {
	_, today := r.today()

	record, _, err := r.findToday(ctx, employeeCode, today)
	if errors.Is(err, errNoRecordToday) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns the employee's attendance records, newest day first.
func (r *Repository) History(ctx context.Context, employeeCode string) ([]entity.AttendanceRecord, error) {
	rows, err := r.store.Read(ctx, Collection)
	if err != nil {
		return nil, errors.Wrap(err, "reading attendance")
	}

	records := []entity.AttendanceRecord{}
	for _, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		if record.EmployeeCode == employeeCode {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date.Time) {
			return records[i].Date.After(records[j].Date.Time)
		}
		return records[i].CheckInTime > records[j].CheckInTime
	})

	return records, nil
}

// errNoRecordToday is internal to the today-lookup; callers translate
// it into the business outcome that fits their operation.
var errNoRecordToday = errors.New("no record today")

func (r *Repository) findToday(ctx context.Context, employeeCode string, today date.Date) (entity.AttendanceRecord, int, error) {
	rows, err := r.store.Read(ctx, Collection)
	if err != nil {
		return entity.AttendanceRecord{}, 0, errors.Wrap(err, "reading attendance")
	}

	for i, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return entity.AttendanceRecord{}, 0, err
		}
		if record.EmployeeCode == employeeCode && sameDay(record.Date, today) {
			return record, i, nil
		}
	}

	return entity.AttendanceRecord{}, 0, errNoRecordToday
}

// today snapshots the wall clock once per operation in the configured
// zone and derives the normalized calendar day from it.
func (r *Repository) today() (time.Time, date.Date) {
	now := r.now().In(r.zone)
	day := date.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
	return now, day
}

func sameDay(a, b date.Date) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func newAttendanceID(now time.Time) string {
	return "ATT-" + now.Format("20060102150405") + "-" + strings.ToUpper(uuid.NewString()[:4])
}
