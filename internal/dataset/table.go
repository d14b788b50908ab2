package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a required column is absent from the table.
var ErrMissingColumn = errors.New("missing column")

// LoadOptions controls how a delimited file is read.
type LoadOptions struct {
	// Delimiter for the file. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Parse is applied whenever a column is coerced without explicit options.
	Parse ParseOptions
}

// Table is an in-memory, column-oriented view of one dataset.
// Cells start as raw strings; columns become numeric once coerced.
// Missing numeric values are NaN.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	raw     map[string][]string
	num     map[string][]float64
	rows    int
	parse   ParseOptions
}

// New builds a table from a header and row-major records. Short records are padded.
func New(name string, header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("empty header")
	}
	t := &Table{
		name:  name,
		index: make(map[string]int, len(header)),
		raw:   make(map[string][]string, len(header)),
		num:   make(map[string][]float64),
		rows:  len(records),
	}
	for _, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := t.index[h]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		t.index[h] = len(t.columns)
		t.columns = append(t.columns, h)
		t.raw[h] = make([]string, len(records))
	}
	for i, rec := range records {
		for j, h := range t.columns {
			if j < len(rec) {
				t.raw[h][i] = rec[j]
			}
		}
	}
	return t, nil
}

// Load reads a delimited file. Every cell is read as a string; numeric
// conversion happens later through Coerce.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(delim),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read dataset: %w", df.Err)
	}
	header := df.Names()
	records := make([][]string, df.Nrow())
	for i := range records {
		records[i] = make([]string, len(header))
	}
	for j, name := range header {
		for i, v := range df.Col(name).Records() {
			records[i][j] = v
		}
	}
	t, err := New(filepath.Base(path), header, records)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	t.parse = opt.Parse
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Name returns the base name of the source file.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns column names in header order, derived columns last.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require returns ErrMissingColumn naming the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}

// isNumeric reports whether the column has been coerced or set as numeric.
func (t *Table) isNumeric(col string) bool {
	_, ok := t.num[col]
	return ok
}

// Coerce converts the named columns to numeric using opt. Cells that cannot
// be parsed become NaN. Columns that do not exist are skipped.
func (t *Table) Coerce(opt ParseOptions, cols ...string) {
	for _, c := range cols {
		if !t.Has(c) {
			continue
		}
		if t.isNumeric(c) {
			continue
		}
		raw := t.raw[c]
		vals := make([]float64, t.rows)
		for i, s := range raw {
			if x, ok := ParseNumeric(s, opt); ok {
				vals[i] = x
			} else {
				vals[i] = math.NaN()
			}
		}
		t.num[c] = vals
	}
}

// Floats returns the live numeric slice for col, coercing it with the table's
// parse options on first use. Writes through the slice mutate the table.
// Returns nil for an absent column.
func (t *Table) Floats(col string) []float64 {
	if !t.Has(col) {
		return nil
	}
	if !t.isNumeric(col) {
		t.Coerce(t.parse, col)
	}
	return t.num[col]
}

// SetFloats adds or replaces a numeric column. vals must have Len() entries.
func (t *Table) SetFloats(col string, vals []float64) error {
	if len(vals) != t.rows {
		return fmt.Errorf("column %s: got %d values, want %d", col, len(vals), t.rows)
	}
	t.ensureColumn(col)
	t.num[col] = vals
	t.raw[col] = nil
	return nil
}

// SetStrings adds or replaces a string column. Empty strings are missing.
func (t *Table) SetStrings(col string, vals []string) error {
	if len(vals) != t.rows {
		return fmt.Errorf("column %s: got %d values, want %d", col, len(vals), t.rows)
	}
	t.ensureColumn(col)
	delete(t.num, col)
	t.raw[col] = vals
	return nil
}

func (t *Table) ensureColumn(col string) {
	if t.Has(col) {
		return
	}
	t.index[col] = len(t.columns)
	t.columns = append(t.columns, col)
}

// Strings returns the column as text. Numeric columns are formatted, with
// NaN rendered as an empty cell.
func (t *Table) Strings(col string) []string {
	if !t.Has(col) {
		return nil
	}
	if vals, ok := t.num[col]; ok {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = FormatNumber(v)
		}
		return out
	}
	return t.raw[col]
}

// Value returns the text of a single cell.
func (t *Table) Value(col string, row int) string {
	if vals, ok := t.num[col]; ok {
		return FormatNumber(vals[row])
	}
	if raw := t.raw[col]; raw != nil {
		return raw[row]
	}
	return ""
}

// IsMissing reports whether a cell holds no value.
func (t *Table) IsMissing(col string, row int) bool {
	if vals, ok := t.num[col]; ok {
		return math.IsNaN(vals[row])
	}
	raw := t.raw[col]
	if raw == nil {
		return true
	}
	return isNAToken(raw[row])
}

// Select copies the given rows and columns into a new table. With no
// columns, every column is kept.
func (t *Table) Select(rows []int, cols ...string) (*Table, error) {
	if len(cols) == 0 {
		cols = t.columns
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := &Table{
		name:  t.name,
		index: make(map[string]int, len(cols)),
		raw:   make(map[string][]string, len(cols)),
		num:   make(map[string][]float64),
		rows:  len(rows),
		parse: t.parse,
	}
	for _, c := range cols {
		out.index[c] = len(out.columns)
		out.columns = append(out.columns, c)
		if vals, ok := t.num[c]; ok {
			cp := make([]float64, len(rows))
			for i, r := range rows {
				cp[i] = vals[r]
			}
			out.num[c] = cp
			continue
		}
		src := t.raw[c]
		cp := make([]string, len(rows))
		for i, r := range rows {
			if src != nil {
				cp[i] = src[r]
			}
		}
		out.raw[c] = cp
	}
	return out, nil
}

// Records returns the header followed by every row as text.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Columns())
	cols := make([][]string, len(t.columns))
	for j, c := range t.columns {
		cols[j] = t.Strings(c)
	}
	for i := 0; i < t.rows; i++ {
		rec := make([]string, len(t.columns))
		for j := range t.columns {
			if cols[j] != nil {
				rec[j] = cols[j][i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// WriteCSV writes the table, including derived columns, as comma-separated text.
func (t *Table) WriteCSV(w io.Writer) error {
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FormatNumber renders integer-valued floats without a fractional part and
// NaN as an empty string.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'g', -1, 64)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
