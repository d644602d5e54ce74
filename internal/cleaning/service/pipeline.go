package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"custclean/pkg/config"
	"custclean/pkg/model"
	"custclean/pkg/sanitizer"
	"custclean/pkg/table"

	"github.com/google/uuid"
)

const (
	noticeStart     = "Starting the data cleaning and formatting pipeline..."
	noticeCompleted = "Data cleaning pipeline completed successfully."
)

type CleaningService interface {
	Clean(ctx context.Context, t *table.Table, opts model.CleanOptions) (*table.Table, *model.Report, error)
}

type cleaningService struct {
	cfg     *config.Config
	notices io.Writer
}

// NewCleaningService writes progress notices to notices, or to stdout when nil.
func NewCleaningService(cfg *config.Config, notices io.Writer) CleaningService {
	if notices == nil {
		notices = os.Stdout
	}
	return &cleaningService{
		cfg:     cfg,
		notices: notices,
	}
}

// Clean runs the eight stages in order on t, mutating it in place. Stage
// errors are returned unchanged and no partial table is handed back.
func (s *cleaningService) Clean(ctx context.Context, t *table.Table, opts model.CleanOptions) (*table.Table, *model.Report, error) {
	if t == nil {
		return nil, nil, table.ErrNilTable
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	report := &model.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		RowsIn:    t.Len(),
		Options:   s.resolveOptions(opts),
	}
	log := s.cfg.Log.WithRun(report.RunID)

	fmt.Fprintln(s.notices, noticeStart)

	steps := []struct {
		name string
		run  func(*table.Table) (*table.Table, error)
	}{
		{"column_names", CleanColumnNames},
		{"gender", infallible(StandardizeGender)},
		{"state", infallible(StandardizeState)},
		{"education", infallible(StandardizeEducation)},
		{"vehicle_class", infallible(func(t *table.Table) *table.Table {
			return StandardizeVehicleClass(t, sanitizer.VehicleClassStrategy(report.Options.VehicleClassMode))
		})},
		{"numerical", infallible(CleanNumerical)},
		{"missing_values", HandleMissingValues},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			log.Warn("Cleaning run interrupted", "stage", step.name, "error", err)
			return nil, nil, err
		}
		next, err := step.run(t)
		if err != nil {
			log.Error("Cleaning stage failed", "stage", step.name, "error", err)
			return nil, nil, err
		}
		t = next
		log.Debug("Cleaning stage finished", "stage", step.name)
	}

	if err := ctx.Err(); err != nil {
		log.Warn("Cleaning run interrupted", "stage", "duplicates", "error", err)
		return nil, nil, err
	}
	t, report.DuplicatesRemoved = RemoveDuplicates(t, s.notices)

	fmt.Fprintln(s.notices, noticeCompleted)

	report.RowsOut = t.Len()
	report.Columns = t.Names()
	report.DurationMs = time.Since(report.StartedAt).Milliseconds()

	log.Info("Cleaning run completed",
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"duplicates_removed", report.DuplicatesRemoved,
		"vehicle_class_mode", report.Options.VehicleClassMode,
		"duration_ms", report.DurationMs,
	)

	return t, report, nil
}

func (s *cleaningService) resolveOptions(opts model.CleanOptions) model.CleanOptions {
	if opts.VehicleClassMode == "" {
		opts.VehicleClassMode = s.cfg.VehicleClassMode
	}
	if opts.VehicleClassMode == "" {
		opts.VehicleClassMode = sanitizer.VehicleClassLiteral
	}
	return opts
}

func infallible(fn func(*table.Table) *table.Table) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		return fn(t), nil
	}
}
