package model

import (
	"time"

	"custclean/pkg/table"
)

type CleanOptions struct {
	VehicleClassMode string `json:"vehicle_class_mode,omitempty" bson:"vehicle_class_mode,omitempty" validate:"omitempty,oneof=literal fixed"`
}

type CleanRequest struct {
	Table   *table.Table `json:"table" validate:"required"`
	Options CleanOptions `json:"options"`
}

// Report summarizes one pipeline run.
type Report struct {
	RunID             string       `json:"run_id" bson:"_id"`
	StartedAt         time.Time    `json:"started_at" bson:"started_at"`
	DurationMs        int64        `json:"duration_ms" bson:"duration_ms"`
	RowsIn            int          `json:"rows_in" bson:"rows_in"`
	RowsOut           int          `json:"rows_out" bson:"rows_out"`
	DuplicatesRemoved int          `json:"duplicates_removed" bson:"duplicates_removed"`
	Columns           []string     `json:"columns" bson:"columns"`
	Options           CleanOptions `json:"options" bson:"options"`
}

type CleanResponse struct {
	Table  *table.Table `json:"table"`
	Report *Report      `json:"report"`
}

// Run is the stored form of a report together with the cleaned rows.
type Run struct {
	Report `bson:",inline"`
	Rows   [][]any `bson:"rows"`
}

func NewRun(report *Report, t *table.Table) *Run {
	return &Run{
		Report: *report,
		Rows:   t.Values(),
	}
}

func (r *Run) Table() (*table.Table, error) {
	return table.FromValues(r.Columns, r.Rows)
}
