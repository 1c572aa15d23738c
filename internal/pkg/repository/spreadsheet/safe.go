package spreadsheet

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const backupTimestamp = "20060102_150405"

// TerminalError is what remains after every retry and the best-effort
// restore are exhausted. The wrapped error is the last attempt's failure.
type TerminalError struct {
	Collection string
	Attempts   int
	Err        error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("collection %q: giving up after %d attempts: %v", e.Collection, e.Attempts, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }

// Writer wraps store writes with bounded retries, exponential backoff,
// a pre-write snapshot and a best-effort restore on exhaustion. Every
// write path of the portal goes through it.
type Writer struct {
	store    Store
	attempts int
	backoff  time.Duration
	now      func() time.Time
	sleep    func(time.Duration)
}

type WriterOption func(*Writer)

func WithAttempts(n int) WriterOption {
	return func(w *Writer) { w.attempts = n }
}

func WithBackoff(base time.Duration) WriterOption {
	return func(w *Writer) { w.backoff = base }
}

func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

func WithSleep(sleep func(time.Duration)) WriterOption {
	return func(w *Writer) { w.sleep = sleep }
}

func NewWriter(store Store, opts ...WriterOption) *Writer {
	w := &Writer{
		store:    store,
		attempts: 3,
		backoff:  time.Second,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Do runs op against the store until it succeeds or attempts run out.
// The caller either observes success or a *TerminalError with the
// collection restored to its pre-write snapshot on a best-effort basis.
// Backoff blocks the calling goroutine; callers must treat Do as a
// potentially multi-second call.
func (w *Writer) Do(ctx context.Context, collection string, op func(ctx context.Context) error) error {
	w.snapshot(ctx, collection)

	var err error
	for attempt := 0; attempt < w.attempts; attempt++ {
		if attempt > 0 {
			w.sleep(w.backoff << (attempt - 1))
		}

		if err = op(ctx); err == nil {
			return nil
		}
		if errors.Is(err, ErrSchemaMismatch) {
			return err
		}

		log.Printf("spreadsheet: write to %q failed (attempt %d/%d): %v", collection, attempt+1, w.attempts, err)
	}

	w.restore(ctx, collection)

	return &TerminalError{Collection: collection, Attempts: w.attempts, Err: err}
}

// snapshot copies the pre-write state into a timestamped backup
// collection. Snapshot failure must never block the write itself.
func (w *Writer) snapshot(ctx context.Context, collection string) {
	rows, err := w.store.Read(ctx, collection)
	if err != nil {
		log.Printf("spreadsheet: skipping backup of %q: %v", collection, err)
		return
	}

	name := collection + backupInfix + w.now().Format(backupTimestamp)
	if err := w.store.Replace(ctx, name, rows); err != nil {
		log.Printf("spreadsheet: backup of %q failed: %v", collection, err)
	}
}

// restore puts the most recent backup back in place after retries are
// exhausted. Its own failure is logged, never compounded onto the
// terminal error shown to the caller.
func (w *Writer) restore(ctx context.Context, collection string) {
	names, err := w.store.Collections(ctx)
	if err != nil {
		log.Printf("spreadsheet: cannot list backups of %q: %v", collection, err)
		return
	}

	prefix := collection + backupInfix
	backups := []string{}
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			backups = append(backups, name)
		}
	}
	if len(backups) == 0 {
		log.Printf("spreadsheet: no backup of %q to restore", collection)
		return
	}

	// The timestamp format sorts lexically, so the last name is the
	// most recent snapshot.
	sort.Strings(backups)
	latest := backups[len(backups)-1]

	rows, err := w.store.Read(ctx, latest)
	if err != nil {
		log.Printf("spreadsheet: reading backup %q failed: %v", latest, err)
		return
	}
	if err := w.store.Replace(ctx, collection, rows); err != nil {
		log.Printf("spreadsheet: restoring %q from %q failed: %v", collection, latest, err)
		return
	}

	log.Printf("spreadsheet: restored %q from %q", collection, latest)
}
