package service

import (
	"bytes"
	"testing"

	"custclean/pkg/sanitizer"
	"custclean/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, names []string, rows ...[]any) *table.Table {
	t.Helper()
	tbl, err := table.FromValues(names, rows)
	require.NoError(t, err)
	return tbl
}

func columnValues(t *testing.T, tbl *table.Table, name string) []any {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok, "column %q not found", name)
	values := make([]any, len(col.Cells))
	for i, c := range col.Cells {
		values[i] = c.Value()
	}
	return values
}

func TestCleanColumnNames(t *testing.T) {
	tbl := mustTable(t, []string{"Customer", "ST", "GENDER", "Income", "Customer Lifetime Value", "Vehicle Class"})

	got, err := CleanColumnNames(tbl)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"customer", "state", "gender", "customer_income", "customer_lifetime_value", "vehicle_class"},
		got.Names())
}

func TestCleanColumnNames_Collision(t *testing.T) {
	tbl := mustTable(t, []string{"State", "ST"})

	_, err := CleanColumnNames(tbl)
	assert.ErrorIs(t, err, table.ErrDuplicateColumn)
}

func TestStandardizeGender(t *testing.T) {
	tbl := mustTable(t, []string{"gender"},
		[]any{"female"}, []any{" f "}, []any{"F"}, []any{"Male"}, []any{"Other"}, []any{nil})

	StandardizeGender(tbl)

	assert.Equal(t, []any{"F", "F", "F", "M", "OTHER", ""}, columnValues(t, tbl, "gender"))
}

func TestStandardizeState(t *testing.T) {
	tbl := mustTable(t, []string{"state"},
		[]any{"ca"}, []any{"cali"}, []any{"ZZ"}, []any{nil}, []any{"Unknown"})

	StandardizeState(tbl)

	assert.Equal(t, []any{"CALIFORNIA", "CALIFORNIA", "ZZ", nil, "Unknown"}, columnValues(t, tbl, "state"))
}

func TestStandardizeState_UnknownPlaceholder(t *testing.T) {
	tbl := mustTable(t, []string{"state"},
		[]any{"Unknown"}, []any{"unknown"}, []any{"UNKNOWN"})

	StandardizeState(tbl)

	// Only the exact placeholder is left alone; other spellings are upper-cased.
	assert.Equal(t, []any{"Unknown", "UNKNOWN", "UNKNOWN"}, columnValues(t, tbl, "state"))
}

func TestStandardizeEducation(t *testing.T) {
	tbl := mustTable(t, []string{"education"},
		[]any{"bachelors"}, []any{"Bachelor of Science"}, []any{"Master"}, []any{nil})

	StandardizeEducation(tbl)

	assert.Equal(t, []any{"Bachelor", "Bachelor", "Master", nil}, columnValues(t, tbl, "education"))
}

func TestStandardizeVehicleClass(t *testing.T) {
	rows := [][]any{{"Luxury SUV"}, {"Sports Car"}, {"SUV"}, {"luxury car"}, {"Utility"}, {nil}}

	literal := mustTable(t, []string{"vehicle_class"}, rows...)
	StandardizeVehicleClass(literal, sanitizer.NormalizeVehicleClass)
	assert.Equal(t,
		[]any{"Luxury", "Luxury", "SUV", "luxury car", "Utility", nil},
		columnValues(t, literal, "vehicle_class"))

	fixed := mustTable(t, []string{"vehicle_class"}, rows...)
	StandardizeVehicleClass(fixed, sanitizer.NormalizeVehicleClassFixed)
	assert.Equal(t,
		[]any{"Luxury", "Luxury", "SUV", "Luxury", "Luxury", nil},
		columnValues(t, fixed, "vehicle_class"))
}

func TestCleanNumerical(t *testing.T) {
	tbl := mustTable(t, []string{"customer_lifetime_value", "number_of_open_complaints"},
		[]any{"45%", "Complaint/3/closed"},
		[]any{"abc", "no match"},
		[]any{"1234.56", "1/0/00"},
		[]any{nil, nil},
		[]any{7.5, 2.0},
	)

	CleanNumerical(tbl)

	assert.Equal(t, []any{45.0, nil, 1234.56, nil, 7.5}, columnValues(t, tbl, "customer_lifetime_value"))
	assert.Equal(t, []any{int64(3), nil, int64(0), nil, int64(2)}, columnValues(t, tbl, "number_of_open_complaints"))
}

func TestCleanNumerical_ComplaintsCellKinds(t *testing.T) {
	tbl := mustTable(t, []string{"number_of_open_complaints"},
		[]any{"2"},
		[]any{"x/2/y"},
		[]any{""},
		[]any{2.0},
		[]any{int64(4)},
		[]any{2.5},
		[]any{true},
	)

	CleanNumerical(tbl)

	assert.Equal(t,
		[]any{nil, int64(2), nil, int64(2), int64(4), nil, nil},
		columnValues(t, tbl, "number_of_open_complaints"))
}

func TestHandleMissingValues_Median(t *testing.T) {
	tbl := mustTable(t, []string{"total_claim_amount", "monthly_premium_auto"},
		[]any{10.0, 1.0},
		[]any{20.0, 2.0},
		[]any{nil, nil},
		[]any{40.0, 4.0},
		[]any{nil, 3.0},
	)

	_, err := HandleMissingValues(tbl)
	require.NoError(t, err)

	assert.Equal(t, []any{10.0, 20.0, 20.0, 40.0, 20.0}, columnValues(t, tbl, "total_claim_amount"))
	assert.Equal(t, []any{1.0, 2.0, 2.5, 4.0, 3.0}, columnValues(t, tbl, "monthly_premium_auto"))
}

func TestHandleMissingValues_SkipsNonNumericAndEmptyColumns(t *testing.T) {
	tbl := mustTable(t, []string{"customer_income", "customer_lifetime_value"},
		[]any{"n/a", nil},
		[]any{nil, nil},
		[]any{30.0, nil},
	)

	_, err := HandleMissingValues(tbl)
	require.NoError(t, err)

	assert.Equal(t, []any{"n/a", nil, 30.0}, columnValues(t, tbl, "customer_income"))
	assert.Equal(t, []any{nil, nil, nil}, columnValues(t, tbl, "customer_lifetime_value"))
}

func TestHandleMissingValues_Categorical(t *testing.T) {
	tbl := mustTable(t, []string{"customer", "policy_type", "education"},
		[]any{nil, "Personal Auto", nil},
		[]any{"AA-1", nil, "Master"},
	)

	_, err := HandleMissingValues(tbl)
	require.NoError(t, err)

	assert.Equal(t, []any{"Unknown", "AA-1"}, columnValues(t, tbl, "customer"))
	assert.Equal(t, []any{"Personal Auto", "Unknown"}, columnValues(t, tbl, "policy_type"))
	assert.Equal(t, []any{"Unknown", "Master"}, columnValues(t, tbl, "education"))
	assert.False(t, tbl.Has(ColumnComplaintsMissing))
}

func TestHandleMissingValues_ComplaintsFlag(t *testing.T) {
	tbl := mustTable(t, []string{"number_of_open_complaints"},
		[]any{int64(3)}, []any{nil}, []any{int64(0)})

	_, err := HandleMissingValues(tbl)
	require.NoError(t, err)

	assert.Equal(t, []any{false, true, false}, columnValues(t, tbl, ColumnComplaintsMissing))
	assert.Equal(t, []any{int64(3), nil, int64(0)}, columnValues(t, tbl, "number_of_open_complaints"))
}

func TestRemoveDuplicates(t *testing.T) {
	tbl := mustTable(t, []string{"state", "gender"},
		[]any{"CALIFORNIA", "F"},
		[]any{"OREGON", "M"},
		[]any{"CALIFORNIA", "F"},
		[]any{nil, "M"},
		[]any{nil, "M"},
	)

	var notices bytes.Buffer
	got, removed := RemoveDuplicates(tbl, &notices)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []any{"CALIFORNIA", "OREGON", nil}, columnValues(t, got, "state"))
	assert.Equal(t, "Number of duplicate rows removed: 2\n", notices.String())
}
