package table

import (
	"encoding/json"
	"fmt"
)

type wireTable struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	w := wireTable{
		Columns: t.Names(),
		Rows:    make([][]Cell, t.Len()),
	}
	for i := range w.Rows {
		w.Rows[i] = t.Row(i)
	}
	return json.Marshal(w)
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var w wireTable
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := FromRows(w.Columns, w.Rows)
	if err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	*t = *decoded
	return nil
}

// Records returns every row keyed by column name.
func (t *Table) Records() []map[string]Cell {
	records := make([]map[string]Cell, t.Len())
	for i := range records {
		records[i] = t.Record(i)
	}
	return records
}

// Values returns the rows as plain Go values, suitable for storage drivers.
func (t *Table) Values() [][]any {
	rows := make([][]any, t.Len())
	for i := range rows {
		row := make([]any, len(t.columns))
		for j, col := range t.columns {
			row[j] = col.Cells[i].Value()
		}
		rows[i] = row
	}
	return rows
}

// FromValues is the inverse of Values.
func FromValues(names []string, rows [][]any) (*Table, error) {
	cellRows := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = Of(v)
		}
		cellRows[i] = cells
	}
	return FromRows(names, cellRows)
}
