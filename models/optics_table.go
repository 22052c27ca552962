package models

import (
	"fmt"
	"strconv"
)

// Standard TFS column names used by the gap calculation.
const (
	ColName    = "NAME"
	ColKeyword = "KEYWORD"
	ColSigmaX  = "SIGMAX"
	ColSigmaY  = "SIGMAY"
)

// OpticsRow is one element of an optics table. String columns (%s) live in
// Strings, every other column in Numbers.
type OpticsRow struct {
	Index   int
	Strings map[string]string
	Numbers map[string]float64
}

// Name returns the NAME column.
func (r OpticsRow) Name() string { return r.Strings[ColName] }

// Keyword returns the element type tag (KEYWORD column).
func (r OpticsRow) Keyword() string { return r.Strings[ColKeyword] }

// Float returns a numeric column, failing with ErrInputMalformed when the row
// has no such column.
func (r OpticsRow) Float(col string) (float64, error) {
	v, ok := r.Numbers[col]
	if !ok {
		return 0, Malformed(r.Name(), col, fmt.Errorf("row %d has no numeric column", r.Index))
	}
	return v, nil
}

// OpticsTable is an ordered, read-only optics table loaded from a TFS file.
type OpticsTable struct {
	Header  map[string]string // @ parameters, values unquoted
	Columns []string          // order from the * line
	Rows    []OpticsRow
}

// NewOpticsTable builds a table and stamps each row with its position.
func NewOpticsTable(header map[string]string, columns []string, rows []OpticsRow) *OpticsTable {
	if header == nil {
		header = map[string]string{}
	}
	for i := range rows {
		rows[i].Index = i
	}
	return &OpticsTable{Header: header, Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (t *OpticsTable) Len() int { return len(t.Rows) }

// Row returns row i.
func (t *OpticsTable) Row(i int) (OpticsRow, error) {
	if i < 0 || i >= len(t.Rows) {
		return OpticsRow{}, Malformed("", "", fmt.Errorf("row index %d out of range [0,%d)", i, len(t.Rows)))
	}
	return t.Rows[i], nil
}

// HasColumn reports whether col appeared in the column list.
func (t *OpticsTable) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// HeaderFloat parses a numeric header parameter.
func (t *OpticsTable) HeaderFloat(key string) (float64, bool) {
	s, ok := t.Header[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IndexFromName returns the index of the first row called name.
func (t *OpticsTable) IndexFromName(name string) (int, error) {
	for i, r := range t.Rows {
		if r.Name() == name {
			return i, nil
		}
	}
	return -1, Malformed(name, ColName, fmt.Errorf("no such element"))
}

// ElementsOfType returns rows whose KEYWORD equals tag exactly, in table order.
func (t *OpticsTable) ElementsOfType(tag string) []OpticsRow {
	var out []OpticsRow
	for _, r := range t.Rows {
		if r.Keyword() == tag {
			out = append(out, r)
		}
	}
	return out
}

// PreviousRow returns the row immediately upstream of index. The first row
// has no upstream neighbour, so index 0 is an error.
func (t *OpticsTable) PreviousRow(index int) (OpticsRow, error) {
	if index <= 0 || index > len(t.Rows) {
		name := ""
		if index >= 0 && index < len(t.Rows) {
			name = t.Rows[index].Name()
		}
		return OpticsRow{}, Malformed(name, "", fmt.Errorf("no row precedes index %d", index))
	}
	return t.Rows[index-1], nil
}
