package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNilTable        = errors.New("table is nil")
	ErrMisaligned      = errors.New("columns have different row counts")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered set of named columns whose cells are aligned by row position.
type Table struct {
	columns []*Column
}

func New(columns ...*Column) (*Table, error) {
	t := &Table{columns: columns}
	if err := t.checkAlignment(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRows builds a table from row-major data.
func FromRows(names []string, rows [][]Cell) (*Table, error) {
	columns := make([]*Column, len(names))
	for j, name := range names {
		columns[j] = &Column{Name: name, Cells: make([]Cell, 0, len(rows))}
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrMisaligned, i, len(row), len(names))
		}
		for j, c := range row {
			columns[j].Cells = append(columns[j].Cells, c)
		}
	}
	return &Table{columns: columns}, nil
}

func (t *Table) checkAlignment() error {
	if len(t.columns) == 0 {
		return nil
	}
	n := len(t.columns[0].Cells)
	for _, col := range t.columns[1:] {
		if len(col.Cells) != n {
			return fmt.Errorf("%w: column %q has %d rows, expected %d", ErrMisaligned, col.Name, len(col.Cells), n)
		}
	}
	return nil
}

// Validate checks row alignment and column name uniqueness.
func (t *Table) Validate() error {
	if t == nil {
		return ErrNilTable
	}
	if err := t.checkAlignment(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(t.columns))
	for _, col := range t.columns {
		if _, ok := seen[col.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = struct{}{}
	}
	return nil
}

func (t *Table) Columns() []*Column {
	return t.columns
}

func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

func (t *Table) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Cells)
}

func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

func (t *Table) Rename(fn func(string) string) {
	for _, col := range t.columns {
		col.Name = fn(col.Name)
	}
}

// Apply rewrites every cell of the named column and reports whether the column exists.
// Absent columns are silently skipped.
func (t *Table) Apply(name string, fn func(Cell) Cell) bool {
	col, ok := t.Column(name)
	if !ok {
		return false
	}
	for i, c := range col.Cells {
		col.Cells[i] = fn(c)
	}
	return true
}

// SetColumn replaces the named column or appends it when absent.
func (t *Table) SetColumn(name string, cells []Cell) error {
	if len(t.columns) > 0 && len(cells) != t.Len() {
		return fmt.Errorf("%w: column %q has %d rows, expected %d", ErrMisaligned, name, len(cells), t.Len())
	}
	if col, ok := t.Column(name); ok {
		col.Cells = cells
		return nil
	}
	t.columns = append(t.columns, &Column{Name: name, Cells: cells})
	return nil
}

func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Cells[i]
	}
	return row
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]Cell {
	rec := make(map[string]Cell, len(t.columns))
	for _, col := range t.columns {
		rec[col.Name] = col.Cells[i]
	}
	return rec
}

func (t *Table) rowKey(i int) string {
	var b strings.Builder
	for _, col := range t.columns {
		b.WriteString(col.Cells[i].key())
		b.WriteByte(0)
	}
	return b.String()
}

// DropDuplicates removes rows equal in every cell to an earlier row, keeping
// the first occurrence and the order of survivors. It returns the number of
// rows removed.
func (t *Table) DropDuplicates() int {
	n := t.Len()
	seen := make(map[string]struct{}, n)
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		k := t.rowKey(i)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	if len(keep) == n {
		return 0
	}
	for _, col := range t.columns {
		cells := make([]Cell, len(keep))
		for j, i := range keep {
			cells[j] = col.Cells[i]
		}
		col.Cells = cells
	}
	return n - len(keep)
}

func (t *Table) Clone() *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		columns[i] = &Column{Name: col.Name, Cells: cells}
	}
	return &Table{columns: columns}
}

// Equal reports whether both tables have the same column names in the same
// order and equal cells.
func (t *Table) Equal(o *Table) bool {
	if len(t.columns) != len(o.columns) || t.Len() != o.Len() {
		return false
	}
	for j, col := range t.columns {
		other := o.columns[j]
		if col.Name != other.Name {
			return false
		}
		for i, c := range col.Cells {
			if !c.Equal(other.Cells[i]) || c.Kind() != other.Cells[i].Kind() {
				return false
			}
		}
	}
	return true
}
