package aggregate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/report"
)

// TableFile is the name of the per-combination table.
const TableFile = "accumulated_results.csv"

// Entry points the aggregator at one instance's persisted solution.
type Entry struct {
	Instance string
	Solution string
}

// Table is the accumulated results of one combination, sorted by instance.
type Table struct {
	Rows []SummaryRow
}

// Lookup returns the row for instance.
func (t *Table) Lookup(instance string) (SummaryRow, bool) {
	i := sort.Search(len(t.Rows), func(i int) bool { return t.Rows[i].Instance >= instance })
	if i < len(t.Rows) && t.Rows[i].Instance == instance {
		return t.Rows[i], true
	}
	return SummaryRow{}, false
}

// Rebuild collects a row per entry, sorts them and atomically replaces
// dir/accumulated_results.csv. Entries without a usable solution become
// AggregationGap failures and are left out of the table. The returned error
// is reserved for failures to write the table itself.
func Rebuild(ctx context.Context, combination, dir string, entries []Entry) (*Table, []*report.Failure, error) {
	logger := ctxlog.FromContext(ctx)

	var failures []*report.Failure
	rows := make([]SummaryRow, 0, len(entries))
	for _, e := range entries {
		row, err := ReadSummary(e.Solution, e.Instance)
		if err != nil {
			f := report.New(report.AggregationGap, e.Instance, combination, err)
			logger.Warn("No summary row for instance.", "instance", e.Instance, "combination", combination, "error", err)
			failures = append(failures, f)
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Instance < rows[j].Instance })

	t := &Table{Rows: rows}
	if err := writeAtomic(filepath.Join(dir, TableFile), t); err != nil {
		return nil, failures, fmt.Errorf("writing %s table: %w", combination, err)
	}
	logger.Debug("Accumulated table rebuilt.", "combination", combination, "rows", len(rows), "gaps", len(failures))
	return t, failures, nil
}

// writeAtomic writes t to a temp file in the same directory and renames it
// over path, so readers see either the old table or the new one.
func writeAtomic(path string, t *Table) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".accumulated-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, Header)
	for _, r := range t.Rows {
		records = append(records, r.Record())
	}
	if err = w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadTable parses an accumulated table.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyTable)
	}

	t := &Table{}
	for _, rec := range records[1:] {
		s := positional.row("", rec)
		if len(rec) > 0 {
			s.Instance = rec[0]
		}
		t.Rows = append(t.Rows, s)
	}
	return t, nil
}

var errEmptyTable = errors.New("table has no header")
