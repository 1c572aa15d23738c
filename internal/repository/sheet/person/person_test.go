package person

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"portal/backend/internal/pkg/repository/spreadsheet"
)

func newDirectory(t *testing.T) *Repository {
	t.Helper()

	store, err := spreadsheet.Open(t.TempDir(), map[string][]string{Collection: Columns})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	err = store.Replace(context.Background(), Collection, []spreadsheet.Row{
		{"Employee Name": "Asha", "Employee Code": "E01", "Designation": "Sales Executive", "Discount Category": "A"},
		{"Employee Name": "Ravi", "Employee Code": "E02", "Designation": "Area Manager", "Discount Category": "B"},
	})
	if err != nil {
		t.Fatalf("seeding directory: %v", err)
	}

	return NewRepository(store)
}

func TestLookupByName(t *testing.T) {
	directory := newDirectory(t)

	employee, err := directory.Lookup(context.Background(), "Ravi")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if employee.EmployeeCode != "E02" || employee.Designation != "Area Manager" {
		t.Fatalf("unexpected employee %+v", employee)
	}
}

func TestLookupByCode(t *testing.T) {
	directory := newDirectory(t)

	employee, err := directory.LookupByCode(context.Background(), "E01")
	if err != nil {
		t.Fatalf("lookup by code: %v", err)
	}
	if employee.EmployeeName != "Asha" || employee.DiscountCategory != "A" {
		t.Fatalf("unexpected employee %+v", employee)
	}
}

func TestLookupUnknown(t *testing.T) {
	directory := newDirectory(t)
	ctx := context.Background()

	if _, err := directory.Lookup(ctx, "Nobody"); !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("expected ErrUnknownEmployee by name, got %v", err)
	}
	if _, err := directory.LookupByCode(ctx, "E99"); !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("expected ErrUnknownEmployee by code, got %v", err)
	}
}

func TestLookupIsExactMatch(t *testing.T) {
	directory := newDirectory(t)

	if _, err := directory.Lookup(context.Background(), "asha"); !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("expected case-sensitive lookup to miss, got %v", err)
	}
}
