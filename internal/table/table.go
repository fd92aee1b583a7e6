// Package table provides the small column-ordered table type the metrics
// engine computes into, plus the explicit left-join and safe-division
// routines its merge and ratio rules are built on.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrColumnMissing reports a lookup against a column the table does not
// carry. Callers are expected to recover from it.
var ErrColumnMissing = errors.New("column missing")

// Row is one record. Values are numbers or strings.
type Row map[string]any

// Table is an ordered-column collection of rows. Fields are exported so
// tables round-trip through JSON cache backends.
type Table struct {
	Name string   `json:"name"`
	Cols []string `json:"cols"`
	Rows []Row    `json:"rows"`
}

// New returns an empty table with the given column order.
func New(name string, cols ...string) *Table {
	return &Table{Name: name, Cols: append([]string(nil), cols...)}
}

func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// HasCol reports whether the column is part of the table.
func (t *Table) HasCol(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Cols {
		if c == col {
			return true
		}
	}
	return false
}

// Append adds a row. Keys not yet present in the column order are appended
// sorted, keeping the order deterministic.
func (t *Table) Append(r Row) {
	var extra []string
	for k := range r {
		if !t.HasCol(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	t.Cols = append(t.Cols, extra...)
	t.Rows = append(t.Rows, r)
}

// Filter returns a new table holding the rows the predicate keeps.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Name, t.Cols...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Select returns a new table restricted to the given columns, skipping any
// the table does not carry.
func (t *Table) Select(cols ...string) *Table {
	var have []string
	for _, c := range cols {
		if t.HasCol(c) {
			have = append(have, c)
		}
	}
	out := New(t.Name, have...)
	for _, r := range t.Rows {
		nr := make(Row, len(have))
		for _, c := range have {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// SortByDesc stable-sorts rows by a numeric column, descending. Rows missing
// the value sort last.
func (t *Table) SortByDesc(col string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, aok := AsFloat(t.Rows[i][col])
		b, bok := AsFloat(t.Rows[j][col])
		if aok != bok {
			return aok
		}
		return a > b
	})
}

// SortByAsc stable-sorts rows by a numeric column, ascending.
func (t *Table) SortByAsc(col string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, aok := AsFloat(t.Rows[i][col])
		b, bok := AsFloat(t.Rows[j][col])
		if aok != bok {
			return aok
		}
		return a < b
	})
}

// Head returns a new table with at most n rows.
func (t *Table) Head(n int) *Table {
	out := New(t.Name, t.Cols...)
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n > 0 {
		out.Rows = append(out.Rows, t.Rows[:n]...)
	}
	return out
}

// Column returns the numeric values of a column; rows with non-numeric or
// missing values contribute 0.
func (t *Table) Column(col string) ([]float64, error) {
	if !t.HasCol(col) {
		return nil, fmt.Errorf("%w: %s", ErrColumnMissing, col)
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		v, _ := AsFloat(r[col])
		out[i] = v
	}
	return out, nil
}

// Sum totals a numeric column, treating missing values as 0.
func (t *Table) Sum(col string) float64 {
	var sum float64
	for _, r := range t.Rows {
		v, _ := AsFloat(r[col])
		sum += v
	}
	return sum
}

// Max returns the largest numeric value in a column, or 0 for an empty or
// fully non-numeric column.
func (t *Table) Max(col string) float64 {
	var max float64
	for _, r := range t.Rows {
		if v, ok := AsFloat(r[col]); ok && v > max {
			max = v
		}
	}
	return max
}

// Mean averages the numeric values of a column; rows without a numeric value
// are excluded from the denominator.
func (t *Table) Mean(col string) float64 {
	var sum float64
	var n int
	for _, r := range t.Rows {
		if v, ok := AsFloat(r[col]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Records returns a deep-ish copy of the rows for serialization.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}

// keyString builds a join key from the given columns, normalizing numbers so
// int and float representations of the same id compare equal.
func keyString(r Row, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			parts[i] = "\x00"
			continue
		}
		if f, isNum := AsFloat(v); isNum {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x1f")
}

// LeftJoin merges right into the receiver on the given key columns. Every
// left row is kept; the first matching right row contributes its non-key
// columns, and columns already present on the left keep the left value.
func (t *Table) LeftJoin(right *Table, keys []string) (*Table, error) {
	for _, k := range keys {
		if !t.HasCol(k) {
			return nil, fmt.Errorf("left %w: %s", ErrColumnMissing, k)
		}
		if !right.HasCol(k) {
			return nil, fmt.Errorf("right %w: %s", ErrColumnMissing, k)
		}
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	cols := append([]string(nil), t.Cols...)
	for _, c := range right.Cols {
		if !isKey[c] && !t.HasCol(c) {
			cols = append(cols, c)
		}
	}

	idx := make(map[string]Row, len(right.Rows))
	for _, r := range right.Rows {
		k := keyString(r, keys)
		if _, seen := idx[k]; !seen {
			idx[k] = r
		}
	}

	out := New(t.Name, cols...)
	for _, l := range t.Rows {
		nr := make(Row, len(l))
		for k, v := range l {
			nr[k] = v
		}
		if r, ok := idx[keyString(l, keys)]; ok {
			for k, v := range r {
				if isKey[k] {
					continue
				}
				if _, exists := nr[k]; !exists {
					nr[k] = v
				}
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// AsFloat coerces a cell value to float64. Strings are parsed; booleans map
// to 0/1. NaN reports false.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case nil:
		return 0, false
	default:
		return 0, false
	}
}

// SafeDivide divides num by den, returning def for a zero or NaN
// denominator.
func SafeDivide(num, den, def float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return def
	}
	return num / den
}

// SafeDivideSlice is the vectorized form of SafeDivide. The result has the
// length of nums; a missing or zero denominator yields def at that index.
func SafeDivideSlice(nums, dens []float64, def float64) []float64 {
	out := make([]float64, len(nums))
	for i := range nums {
		if i >= len(dens) || dens[i] == 0 || math.IsNaN(dens[i]) {
			out[i] = def
			continue
		}
		out[i] = nums[i] / dens[i]
	}
	return out
}

// Round2 rounds to two decimal places, the precision the metric tables
// report ratios at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
