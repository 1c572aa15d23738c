package spreadsheet

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

var testSchemas = map[string][]string{
	"Ledger": {"ID", "Value"},
}

func openTestStore(t *testing.T) *Workbooks {
	t.Helper()

	store, err := Open(t.TempDir(), testSchemas)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return store
}

func TestReadEmptyCollection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading empty collection: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestReadMissingCollection(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Read(context.Background(), "Nowhere")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestReplaceAndReadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := []Row{
		{"ID": "1", "Value": "a"},
		{"ID": "2", "Value": ""},
	}
	if err := store.Replace(ctx, "Ledger", in); err != nil {
		t.Fatalf("replacing: %v", err)
	}

	out, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0]["ID"] != "1" || out[0]["Value"] != "a" {
		t.Fatalf("unexpected first row: %v", out[0])
	}
	if out[1]["Value"] != "" {
		t.Fatalf("expected empty value preserved, got %q", out[1]["Value"])
	}
}

func TestReplaceRejectsMissingColumn(t *testing.T) {
	store := openTestStore(t)

	err := store.Replace(context.Background(), "Ledger", []Row{{"ID": "1"}})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReplaceRejectsUnregisteredCollection(t *testing.T) {
	store := openTestStore(t)

	err := store.Replace(context.Background(), "Unknown", []Row{})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReplaceToleratesExtraColumns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := []Row{{"ID": "1", "Value": "a", "Note": "extra"}}
	if err := store.Replace(ctx, "Ledger", in); err != nil {
		t.Fatalf("replacing: %v", err)
	}

	out, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if out[0]["Note"] != "extra" {
		t.Fatalf("expected extra column to survive, got %v", out[0])
	}
}

func TestAppendUniqueLastWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendUnique(ctx, "Ledger", []Row{{"ID": "1", "Value": "a"}}, "ID"); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.AppendUnique(ctx, "Ledger", []Row{{"ID": "1", "Value": "b"}}, "ID"); err != nil {
		t.Fatalf("second append: %v", err)
	}

	out, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(out))
	}
	if out[0]["Value"] != "b" {
		t.Fatalf("expected last write to win, got %q", out[0]["Value"])
	}
}

func TestAppendUniqueKeepsPositionOnResubmit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seed := []Row{
		{"ID": "1", "Value": "a"},
		{"ID": "2", "Value": "b"},
	}
	if err := store.AppendUnique(ctx, "Ledger", seed, "ID"); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if err := store.AppendUnique(ctx, "Ledger", []Row{{"ID": "1", "Value": "updated"}}, "ID"); err != nil {
		t.Fatalf("resubmitting: %v", err)
	}

	out, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0]["ID"] != "1" || out[0]["Value"] != "updated" {
		t.Fatalf("expected updated row to keep its position, got %v", out[0])
	}
}

func TestBackupCollectionInheritsSchema(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []Row{{"ID": "1", "Value": "a"}}
	if err := store.Replace(ctx, "Ledger_backup_20250101_120000", rows); err != nil {
		t.Fatalf("writing backup collection: %v", err)
	}

	names, err := store.Collections(ctx)
	if err != nil {
		t.Fatalf("listing collections: %v", err)
	}
	found := false
	for _, name := range names {
		if name == "Ledger_backup_20250101_120000" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected backup collection in %v", names)
	}
}
