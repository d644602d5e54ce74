package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"custclean/pkg/config"
	"custclean/pkg/logger"
	"custclean/pkg/model"
	"custclean/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, logs io.Writer) *config.Config {
	t.Helper()
	if logs == nil {
		logs = io.Discard
	}
	return &config.Config{
		VehicleClassMode: "literal",
		Log: logger.New(logger.Config{
			Level:  logger.DEBUG,
			Format: logger.JSON,
			Output: logs,
		}),
	}
}

func rawCustomers(t *testing.T) *table.Table {
	return mustTable(t,
		[]string{"Customer", "ST", "GENDER", "Education", "Customer Lifetime Value", "Income",
			"Monthly Premium Auto", "Number of Open Complaints", "Policy Type", "Vehicle Class", "Total Claim Amount"},
		[]any{"AA-1", "ca", "female", "Bachelor", "45%", 1000.0, 100.0, "1/3/00", "Personal Auto", "Luxury SUV", 10.0},
		[]any{"AA-1", "cali", " f ", "bachelors", "45%", 1000.0, 100.0, "1/3/00", "Personal Auto", "Luxury SUV", 10.0},
		[]any{"BB-2", "WA", "Male", "Master", "abc", nil, 200.0, "no match", nil, "Sports Car", 20.0},
		[]any{nil, nil, nil, nil, "1234.56%", 3000.0, nil, "1/0/00", "Corporate Auto", "SUV", nil},
		[]any{"CC-3", "zz", "Other", "High School", nil, 4000.0, 400.0, nil, "Special Auto", nil, 40.0},
	)
}

func TestClean_EndToEnd(t *testing.T) {
	var notices bytes.Buffer
	svc := NewCleaningService(testConfig(t, nil), &notices)

	got, report, err := svc.Clean(context.Background(), rawCustomers(t), model.CleanOptions{})
	require.NoError(t, err)

	assert.Equal(t,
		"Starting the data cleaning and formatting pipeline...\n"+
			"Number of duplicate rows removed: 1\n"+
			"Data cleaning pipeline completed successfully.\n",
		notices.String())

	assert.Equal(t, []string{"customer", "state", "gender", "education", "customer_lifetime_value", "customer_income",
		"monthly_premium_auto", "number_of_open_complaints", "policy_type", "vehicle_class", "total_claim_amount",
		"complaints_missing"}, got.Names())
	require.Equal(t, 4, got.Len())

	assert.Equal(t, []any{"AA-1", "BB-2", "Unknown", "CC-3"}, columnValues(t, got, "customer"))
	assert.Equal(t, []any{"CALIFORNIA", "WASHINGTON", "Unknown", "ZZ"}, columnValues(t, got, "state"))
	assert.Equal(t, []any{"F", "M", "", "OTHER"}, columnValues(t, got, "gender"))
	assert.Equal(t, []any{"Bachelor", "Master", "Unknown", "High School"}, columnValues(t, got, "education"))
	assert.Equal(t, []any{"Luxury", "Luxury", "SUV", "Unknown"}, columnValues(t, got, "vehicle_class"))
	assert.Equal(t, []any{"Personal Auto", "Unknown", "Corporate Auto", "Special Auto"}, columnValues(t, got, "policy_type"))

	// medians are taken before duplicates are dropped
	assert.Equal(t, []any{45.0, 45.0, 1234.56, 45.0}, columnValues(t, got, "customer_lifetime_value"))
	assert.Equal(t, []any{1000.0, 2000.0, 3000.0, 4000.0}, columnValues(t, got, "customer_income"))
	assert.Equal(t, []any{100.0, 200.0, 150.0, 400.0}, columnValues(t, got, "monthly_premium_auto"))
	assert.Equal(t, []any{10.0, 20.0, 15.0, 40.0}, columnValues(t, got, "total_claim_amount"))

	assert.Equal(t, []any{int64(3), nil, int64(0), nil}, columnValues(t, got, "number_of_open_complaints"))
	assert.Equal(t, []any{false, true, false, true}, columnValues(t, got, "complaints_missing"))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.RowsIn)
	assert.Equal(t, 4, report.RowsOut)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, "literal", report.Options.VehicleClassMode)
	assert.Equal(t, got.Names(), report.Columns)
}

func TestClean_Idempotent(t *testing.T) {
	svc := NewCleaningService(testConfig(t, nil), io.Discard)

	first, _, err := svc.Clean(context.Background(), rawCustomers(t), model.CleanOptions{})
	require.NoError(t, err)
	snapshot := first.Clone()

	var notices bytes.Buffer
	second, report, err := NewCleaningService(testConfig(t, nil), &notices).
		Clean(context.Background(), first, model.CleanOptions{})
	require.NoError(t, err)

	assert.True(t, snapshot.Equal(second), "second pass changed the table")
	assert.Zero(t, report.DuplicatesRemoved)
	assert.Contains(t, notices.String(), "Number of duplicate rows removed: 0\n")
}

func TestClean_IdempotentAfterJSONRoundTrip(t *testing.T) {
	svc := NewCleaningService(testConfig(t, nil), io.Discard)

	for _, mode := range []string{"literal", "fixed"} {
		t.Run(mode, func(t *testing.T) {
			opts := model.CleanOptions{VehicleClassMode: mode}
			first, _, err := svc.Clean(context.Background(), rawCustomers(t), opts)
			require.NoError(t, err)

			data, err := json.Marshal(first)
			require.NoError(t, err)
			var decoded table.Table
			require.NoError(t, json.Unmarshal(data, &decoded))

			second, report, err := svc.Clean(context.Background(), &decoded, opts)
			require.NoError(t, err)

			again, err := json.Marshal(second)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
			assert.Zero(t, report.DuplicatesRemoved)
		})
	}
}

func TestClean_DeduplicatesAfterNormalization(t *testing.T) {
	tbl := mustTable(t, []string{"customer", "state"},
		[]any{"AA-1", "CA"},
		[]any{"AA-1", "cali"},
	)

	var notices bytes.Buffer
	got, report, err := NewCleaningService(testConfig(t, nil), &notices).
		Clean(context.Background(), tbl, model.CleanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, []any{"CALIFORNIA"}, columnValues(t, got, "state"))
}

func TestClean_FixedVehicleClassOption(t *testing.T) {
	tbl := mustTable(t, []string{"Vehicle Class"}, []any{"luxury car"}, []any{"SUV"})

	got, report, err := NewCleaningService(testConfig(t, nil), io.Discard).
		Clean(context.Background(), tbl, model.CleanOptions{VehicleClassMode: "fixed"})
	require.NoError(t, err)

	assert.Equal(t, []any{"Luxury", "SUV"}, columnValues(t, got, "vehicle_class"))
	assert.Equal(t, "fixed", report.Options.VehicleClassMode)
}

func TestClean_ConfiguredVehicleClassMode(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.VehicleClassMode = "fixed"
	tbl := mustTable(t, []string{"vehicle_class"}, []any{"luxury car"})

	got, _, err := NewCleaningService(cfg, io.Discard).Clean(context.Background(), tbl, model.CleanOptions{})
	require.NoError(t, err)

	assert.Equal(t, []any{"Luxury"}, columnValues(t, got, "vehicle_class"))
}

func TestClean_NoKnownColumns(t *testing.T) {
	tbl := mustTable(t, []string{"Notes"}, []any{"a"}, []any{"a"}, []any{"b"})

	got, report, err := NewCleaningService(testConfig(t, nil), io.Discard).
		Clean(context.Background(), tbl, model.CleanOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"notes"}, got.Names())
	assert.Equal(t, []any{"a", "b"}, columnValues(t, got, "notes"))
	assert.Equal(t, 1, report.DuplicatesRemoved)
}

func TestClean_StructuralFailure(t *testing.T) {
	var notices, logs bytes.Buffer
	tbl := mustTable(t, []string{"Income", "customer_income"}, []any{1.0, 2.0})

	got, report, err := NewCleaningService(testConfig(t, &logs), &notices).
		Clean(context.Background(), tbl, model.CleanOptions{})

	assert.ErrorIs(t, err, table.ErrDuplicateColumn)
	assert.Nil(t, got)
	assert.Nil(t, report)
	assert.NotContains(t, notices.String(), "completed successfully")
	assert.Contains(t, logs.String(), "Cleaning stage failed")
}

func TestClean_NilTable(t *testing.T) {
	_, _, err := NewCleaningService(testConfig(t, nil), io.Discard).
		Clean(context.Background(), nil, model.CleanOptions{})
	assert.ErrorIs(t, err, table.ErrNilTable)
}

func TestClean_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var notices bytes.Buffer
	_, _, err := NewCleaningService(testConfig(t, nil), &notices).
		Clean(ctx, rawCustomers(t), model.CleanOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, strings.Contains(notices.String(), "completed"))
}

func TestClean_LogsRunID(t *testing.T) {
	var logs bytes.Buffer
	_, report, err := NewCleaningService(testConfig(t, &logs), io.Discard).
		Clean(context.Background(), rawCustomers(t), model.CleanOptions{})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"run_id":"`+report.RunID+`"`)
	assert.Contains(t, logs.String(), "Cleaning run completed")
}
