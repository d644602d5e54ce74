package service

import (
	"fmt"
	"io"
	"math"

	"custclean/pkg/sanitizer"
	"custclean/pkg/table"

	"github.com/montanaflynn/stats"
)

const (
	ColumnGender            = "gender"
	ColumnState             = "state"
	ColumnEducation         = "education"
	ColumnVehicleClass      = "vehicle_class"
	ColumnLifetimeValue     = "customer_lifetime_value"
	ColumnOpenComplaints    = "number_of_open_complaints"
	ColumnComplaintsMissing = "complaints_missing"
)

// maxExactInt is the largest integer a float64 holds without rounding.
const maxExactInt = 1 << 53

var (
	categoricalColumns = []string{"customer", "state", "gender", "education", "policy_type", "vehicle_class"}
	numericalColumns   = []string{"total_claim_amount", "monthly_premium_auto", "customer_income", "customer_lifetime_value"}
)

// stringRule applies fn to the string form of every present cell. Missing
// cells stay missing so HandleMissingValues can fill them, and cells it
// already filled keep the Unknown placeholder on a later pass. A filled
// cell looks the same as a raw "Unknown" once read back from JSON or BSON,
// so a raw "Unknown" is kept as is rather than passed to fn.
func stringRule(fn sanitizer.Strategy) func(table.Cell) table.Cell {
	return func(c table.Cell) table.Cell {
		if c.IsMissing() || c.Equal(table.StringCell(sanitizer.Unknown)) {
			return c
		}
		return table.StringCell(fn(c.String()))
	}
}

// CleanColumnNames fails when two columns end up with the same name.
func CleanColumnNames(t *table.Table) (*table.Table, error) {
	t.Rename(sanitizer.NormalizeColumnName)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// StandardizeGender maps missing cells to the empty string before normalizing.
func StandardizeGender(t *table.Table) *table.Table {
	t.Apply(ColumnGender, func(c table.Cell) table.Cell {
		return table.StringCell(sanitizer.NormalizeGender(c.String()))
	})
	return t
}

func StandardizeState(t *table.Table) *table.Table {
	t.Apply(ColumnState, stringRule(sanitizer.NormalizeState))
	return t
}

func StandardizeEducation(t *table.Table) *table.Table {
	t.Apply(ColumnEducation, stringRule(sanitizer.NormalizeEducation))
	return t
}

func StandardizeVehicleClass(t *table.Table, rule sanitizer.Strategy) *table.Table {
	t.Apply(ColumnVehicleClass, stringRule(rule))
	return t
}

// CleanNumerical turns unparseable values into missing cells. A numeric
// complaints cell holding a whole number is taken as an already extracted
// count and skips the digit pattern, so cleaned output read back from JSON
// or BSON passes through unchanged. This bypass is limited to numeric cells:
// strings always go through the slash-delimited digit pattern, so a raw "2"
// still becomes missing, as does a numeric cell with a fraction.
func CleanNumerical(t *table.Table) *table.Table {
	t.Apply(ColumnLifetimeValue, func(c table.Cell) table.Cell {
		f, ok := sanitizer.ParsePercent(c.String())
		if !ok {
			return table.MissingCell()
		}
		return table.NumberCell(f)
	})

	t.Apply(ColumnOpenComplaints, func(c table.Cell) table.Cell {
		if f, ok := c.Float(); ok && f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return table.IntCell(int64(f))
		}
		n, ok := sanitizer.ExtractComplaints(c.String())
		if !ok {
			return table.MissingCell()
		}
		return table.IntCell(n)
	})
	return t
}

func HandleMissingValues(t *table.Table) (*table.Table, error) {
	for _, name := range categoricalColumns {
		t.Apply(name, func(c table.Cell) table.Cell {
			if c.IsMissing() {
				return table.StringCell(sanitizer.Unknown)
			}
			return c
		})
	}

	for _, name := range numericalColumns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		median, ok := columnMedian(col)
		if !ok {
			continue
		}
		for i, c := range col.Cells {
			if c.IsMissing() {
				col.Cells[i] = table.NumberCell(median)
			}
		}
	}

	complaints, ok := t.Column(ColumnOpenComplaints)
	if !ok {
		return t, nil
	}
	flags := make([]table.Cell, len(complaints.Cells))
	for i, c := range complaints.Cells {
		flags[i] = table.BoolCell(c.IsMissing())
	}
	if err := t.SetColumn(ColumnComplaintsMissing, flags); err != nil {
		return nil, err
	}
	return t, nil
}

// columnMedian reports false for columns holding non-numeric values or no
// values at all; those are left untouched.
func columnMedian(col *table.Column) (float64, bool) {
	values := make(stats.Float64Data, 0, len(col.Cells))
	for _, c := range col.Cells {
		if c.IsMissing() {
			continue
		}
		f, ok := c.Float()
		if !ok {
			return 0, false
		}
		values = append(values, f)
	}
	if len(values) == 0 {
		return 0, false
	}
	median, err := stats.Median(values)
	if err != nil {
		return 0, false
	}
	return median, true
}

func RemoveDuplicates(t *table.Table, notices io.Writer) (*table.Table, int) {
	removed := t.DropDuplicates()
	fmt.Fprintf(notices, "Number of duplicate rows removed: %d\n", removed)
	return t, removed
}
