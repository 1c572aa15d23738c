package location

import (
	"context"
	"testing"
	"time"

	"portal/backend/internal/entity"
	"portal/backend/internal/pkg/repository/spreadsheet"
)

func newTestTracker(t *testing.T) (*Tracker, *spreadsheet.Workbooks, *time.Time) {
	t.Helper()

	store, err := spreadsheet.Open(t.TempDir(), map[string][]string{Collection: Columns})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	now := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	writer := spreadsheet.NewWriter(store, spreadsheet.WithSleep(func(time.Duration) {}))
	tracker := NewTracker(store, writer, time.UTC, TrackerClock(func() time.Time { return now }))

	return tracker, store, &now
}

func TestTrackerLogsOncePerHour(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	employee := entity.Employee{EmployeeName: "Asha", EmployeeCode: "E01"}
	sample := entity.LocationSample{Latitude: 12.9716, Longitude: 77.5946, Accuracy: 12.5}

	logged, err := tracker.Log(ctx, employee, sample, MapLink(sample))
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	if !logged {
		t.Fatal("expected first sample of the hour to be logged")
	}

	// Same hour bucket: suppressed without touching the store.
	*now = now.Add(20 * time.Minute)
	logged, err = tracker.Log(ctx, employee, sample, MapLink(sample))
	if err != nil {
		t.Fatalf("second log: %v", err)
	}
	if logged {
		t.Fatal("expected a repeat sample within the hour to be suppressed")
	}

	rows, err := store.Read(ctx, Collection)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(rows))
	}
	if rows[0]["Latitude"] != "12.971600" || rows[0]["Accuracy (m)"] != "12.5" {
		t.Fatalf("unexpected row %v", rows[0])
	}

	*now = now.Add(time.Hour)
	logged, err = tracker.Log(ctx, employee, sample, MapLink(sample))
	if err != nil {
		t.Fatalf("next-hour log: %v", err)
	}
	if !logged {
		t.Fatal("expected the next hour bucket to be logged")
	}

	rows, err = store.Read(ctx, Collection)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two persisted rows, got %d", len(rows))
	}
}

func TestTrackerKeysPerEmployee(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	sample := entity.LocationSample{Latitude: 1, Longitude: 2}

	for _, code := range []string{"E01", "E02"} {
		logged, err := tracker.Log(ctx, entity.Employee{EmployeeCode: code}, sample, MapLink(sample))
		if err != nil {
			t.Fatalf("logging %s: %v", code, err)
		}
		if !logged {
			t.Fatalf("expected %s to get its own hour bucket", code)
		}
	}

	rows, err := store.Read(ctx, Collection)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected one row per employee, got %d", len(rows))
	}
}
