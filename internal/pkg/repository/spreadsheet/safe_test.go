package spreadsheet

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func countBackups(t *testing.T, store *Workbooks, collection string) int {
	t.Helper()

	names, err := store.Collections(context.Background())
	if err != nil {
		t.Fatalf("listing collections: %v", err)
	}
	n := 0
	for _, name := range names {
		if strings.HasPrefix(name, collection+backupInfix) {
			n++
		}
	}
	return n
}

func TestDoRetriesTransientFailures(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	slept := []time.Duration{}
	writer := NewWriter(store,
		WithBackoff(10*time.Millisecond),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)

	attempts := 0
	err := writer.Do(ctx, "Ledger", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.Wrap(ErrStoreUnavailable, "flaky")
		}
		return store.AppendUnique(ctx, "Ledger", []Row{{"ID": "1", "Value": "a"}}, "ID")
	})
	if err != nil {
		t.Fatalf("expected third attempt to succeed, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}

	rows, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one persisted row, got %d", len(rows))
	}

	if got := countBackups(t, store, "Ledger"); got != 1 {
		t.Fatalf("expected exactly one pre-write snapshot, got %d", got)
	}

	if len(slept) != 2 || slept[0] != 10*time.Millisecond || slept[1] != 20*time.Millisecond {
		t.Fatalf("expected exponential backoff [10ms 20ms], got %v", slept)
	}
}

func TestDoRestoresBackupOnExhaustion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	good := []Row{{"ID": "1", "Value": "known-good"}}
	if err := store.Replace(ctx, "Ledger", good); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	writer := NewWriter(store, WithSleep(func(time.Duration) {}))

	err := writer.Do(ctx, "Ledger", func(ctx context.Context) error {
		// Simulate a write that corrupts the collection before failing.
		if err := store.Replace(ctx, "Ledger", []Row{{"ID": "1", "Value": "partial"}}); err != nil {
			return err
		}
		return errors.Wrap(ErrStoreUnavailable, "connection dropped")
	})

	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected TerminalError, got %v", err)
	}
	if terminal.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", terminal.Attempts)
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected terminal error to wrap the last failure, got %v", err)
	}

	rows, err := store.Read(ctx, "Ledger")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 1 || rows[0]["Value"] != "known-good" {
		t.Fatalf("expected collection restored from backup, got %v", rows)
	}
}

func TestDoNeverRetriesSchemaMismatch(t *testing.T) {
	store := openTestStore(t)

	writer := NewWriter(store, WithSleep(func(d time.Duration) {
		t.Fatalf("schema mismatch must not back off, slept %v", d)
	}))

	attempts := 0
	err := writer.Do(context.Background(), "Ledger", func(context.Context) error {
		attempts++
		return errors.Wrap(ErrSchemaMismatch, "missing column")
	})

	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}

	var terminal *TerminalError
	if errors.As(err, &terminal) {
		t.Fatalf("schema mismatch must not be reported as terminal: %v", err)
	}
}

func TestSnapshotFailureDoesNotBlockWrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := NewWriter(store, WithSleep(func(time.Duration) {}))

	// "Missing" has no workbook yet, so the snapshot read fails; the
	// write itself must still run.
	ran := false
	err := writer.Do(ctx, "Missing", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected success despite failed snapshot, got %v", err)
	}
	if !ran {
		t.Fatalf("expected operation to run")
	}
}
