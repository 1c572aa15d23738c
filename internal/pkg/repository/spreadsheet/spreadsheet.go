package spreadsheet

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// The backing store offers no transactions and no server-side
// constraints: every write is "read the whole collection, merge in
// memory, write the whole collection back". Callers get last-write-wins
// at collection granularity and nothing stronger.

var (
	// ErrStoreUnavailable marks transient failures (missing or
	// unreadable workbook). Safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSchemaMismatch marks a row that does not carry the collection's
	// required columns. This is a programming error and is never retried.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Row is one record of a collection, keyed by header cell.
type Row map[string]string

// Store is uniform read/write/append access to named tabular collections.
type Store interface {
	Read(ctx context.Context, collection string) ([]Row, error)
	Replace(ctx context.Context, collection string, rows []Row) error
	AppendUnique(ctx context.Context, collection string, rows []Row, uniqueKey string) error
	Collections(ctx context.Context) ([]string, error)
}

const backupInfix = "_backup_"

// Workbooks keeps each collection in its own .xlsx file under a data
// directory. Collections live in files rather than sheets of a single
// workbook because Excel caps sheet names at 31 characters, which cannot
// hold the timestamped backup-collection names.
type Workbooks struct {
	mu      sync.Mutex
	dir     string
	schemas map[string][]string
}

// Open prepares a workbook directory. Collections named in schemas that
// do not exist yet are created with their header row.
func Open(dir string, schemas map[string][]string) (*Workbooks, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating workbook directory")
	}

	w := &Workbooks{dir: dir, schemas: schemas}

	for collection, columns := range schemas {
		if _, err := os.Stat(w.path(collection)); err == nil {
			continue
		}
		if err := w.write(collection, columns, nil); err != nil {
			return nil, errors.Wrapf(err, "creating collection %q", collection)
		}
	}

	return w, nil
}

func (w *Workbooks) path(collection string) string {
	return filepath.Join(w.dir, collection+".xlsx")
}

// columnsFor resolves the registered schema of a collection. Backup
// collections inherit the schema of the collection they snapshot.
func (w *Workbooks) columnsFor(collection string) ([]string, error) {
	base := collection
	if i := strings.Index(base, backupInfix); i >= 0 {
		base = base[:i]
	}
	columns, ok := w.schemas[base]
	if !ok {
		return nil, errors.Wrapf(ErrSchemaMismatch, "no schema registered for collection %q", collection)
	}
	return columns, nil
}

func (w *Workbooks) Read(ctx context.Context, collection string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.read(collection)
}

func (w *Workbooks) read(collection string) ([]Row, error) {
	f, err := excelize.OpenFile(w.path(collection))
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "opening collection %q: %v", collection, err)
	}
	defer f.Close()

	cells, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "reading collection %q: %v", collection, err)
	}
	if len(cells) == 0 {
		return []Row{}, nil
	}

	header := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		blank := true
		for _, v := range line {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		row := Row{}
		for i, column := range header {
			if i < len(line) {
				row[column] = line[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (w *Workbooks) Replace(ctx context.Context, collection string, rows []Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.replace(collection, rows)
}

func (w *Workbooks) replace(collection string, rows []Row) error {
	columns, err := w.columnsFor(collection)
	if err != nil {
		return err
	}

	for _, row := range rows {
		for _, column := range columns {
			if _, ok := row[column]; !ok {
				return errors.Wrapf(ErrSchemaMismatch, "collection %q: row missing column %q", collection, column)
			}
		}
	}

	// Columns outside the schema are tolerated and written after it.
	extra := []string{}
	seen := map[string]bool{}
	for _, column := range columns {
		seen[column] = true
	}
	for _, row := range rows {
		for column := range row {
			if !seen[column] {
				seen[column] = true
				extra = append(extra, column)
			}
		}
	}
	sort.Strings(extra)

	return w.write(collection, append(append([]string{}, columns...), extra...), rows)
}

func (w *Workbooks) write(collection string, header []string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	cells := make([]interface{}, len(header))
	for i, column := range header {
		cells[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return errors.Wrapf(ErrStoreUnavailable, "writing header of %q: %v", collection, err)
	}

	for n, row := range rows {
		line := make([]interface{}, len(header))
		for i, column := range header {
			line[i] = row[column]
		}
		axis, err := excelize.JoinCellName("A", n+2)
		if err != nil {
			return errors.Wrapf(ErrStoreUnavailable, "writing collection %q: %v", collection, err)
		}
		if err := f.SetSheetRow(sheet, axis, &line); err != nil {
			return errors.Wrapf(ErrStoreUnavailable, "writing collection %q: %v", collection, err)
		}
	}

	if err := f.SaveAs(w.path(collection)); err != nil {
		return errors.Wrapf(ErrStoreUnavailable, "saving collection %q: %v", collection, err)
	}
	return nil
}

// AppendUnique reads the collection, concatenates the new rows and
// deduplicates by uniqueKey before writing everything back. The merge is
// stable last-wins: a re-submitted row keeps its original position but
// takes the newest values, so a checkout superseding its check-in row
// replaces it instead of duplicating it.
func (w *Workbooks) AppendUnique(ctx context.Context, collection string, rows []Row, uniqueKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	existing, err := w.read(collection)
	if err != nil {
		return err
	}

	merged := make([]Row, 0, len(existing)+len(rows))
	position := map[string]int{}
	for _, row := range append(existing, rows...) {
		key := row[uniqueKey]
		if key == "" {
			merged = append(merged, row)
			continue
		}
		if at, ok := position[key]; ok {
			merged[at] = row
			continue
		}
		position[key] = len(merged)
		merged = append(merged, row)
	}

	return w.replace(collection, merged)
}

func (w *Workbooks) Collections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "listing collections: %v", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".xlsx"))
	}
	sort.Strings(names)

	return names, nil
}
