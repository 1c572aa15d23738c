package location

import (
	"context"
	"strconv"
	"sync"
	"time"

	"portal/backend/internal/entity"
	"portal/backend/internal/pkg/repository/spreadsheet"
)

// Collection receives the periodic location log rows.
const Collection = "LocationLog"

const (
	colLogKey       = "Log Key"
	colEmployeeCode = "Employee Code"
	colEmployeeName = "Employee Name"
	colDate         = "Date"
	colTime         = "Time"
	colLatitude     = "Latitude"
	colLongitude    = "Longitude"
	colAccuracy     = "Accuracy (m)"
	colLocationLink = "Location Link"
)

var Columns = []string{
	colLogKey,
	colEmployeeCode,
	colEmployeeName,
	colDate,
	colTime,
	colLatitude,
	colLongitude,
	colAccuracy,
	colLocationLink,
}

const bucketFormat = "02-01-2006-15"

// Tracker appends periodic location samples, at most one per employee
// per hour. The in-process guard is a mutex-protected set, not a lock
// across sessions; the append itself is also keyed on the hour bucket,
// so the store's last-wins dedup absorbs whatever the guard misses.
type Tracker struct {
	store  spreadsheet.Store
	writer *spreadsheet.Writer
	zone   *time.Location
	now    func() time.Time

	mu     sync.Mutex
	logged map[string]bool
}

type TrackerOption func(*Tracker)

func TrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(store spreadsheet.Store, writer *spreadsheet.Writer, zone *time.Location, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:  store,
		writer: writer,
		zone:   zone,
		now:    time.Now,
		logged: map[string]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Log records the sample unless this employee's hour bucket was already
// logged. It reports whether a row was written.
func (t *Tracker) Log(ctx context.Context, employee entity.Employee, sample entity.LocationSample, reference string) (bool, error) {
	now := t.now().In(t.zone)
	key := employee.EmployeeCode + "-" + now.Format(bucketFormat)

	t.mu.Lock()
	already := t.logged[key]
	t.mu.Unlock()
	if already {
		return false, nil
	}

	row := spreadsheet.Row{
		colLogKey:       key,
		colEmployeeCode: employee.EmployeeCode,
		colEmployeeName: employee.EmployeeName,
		colDate:         now.Format("02-01-2006"),
		colTime:         now.Format("15:04:05"),
		colLatitude:     strconv.FormatFloat(sample.Latitude, 'f', 6, 64),
		colLongitude:    strconv.FormatFloat(sample.Longitude, 'f', 6, 64),
		colAccuracy:     strconv.FormatFloat(sample.Accuracy, 'f', 1, 64),
		colLocationLink: reference,
	}

	err := t.writer.Do(ctx, Collection, func(ctx context.Context) error {
		return t.store.AppendUnique(ctx, Collection, []spreadsheet.Row{row}, colLogKey)
	})
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	t.logged[key] = true
	t.mu.Unlock()

	return true, nil
}
