package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	cleaningerrors "custclean/internal/cleaning/errors"
	"custclean/internal/cleaning/validator"
	apperrors "custclean/pkg/errors"
	"custclean/pkg/model"
	"custclean/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockRunRepository struct {
	saved        []*model.Run
	saveErr      error
	findByIDFunc func(ctx context.Context, id string) (*model.Run, error)
	recent       []*model.Report
	lastLimit    int
}

func (m *mockRunRepository) Save(ctx context.Context, run *model.Run) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockRunRepository) FindByID(ctx context.Context, id string) (*model.Run, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", cleaningerrors.ErrNotFound, id)
}

func (m *mockRunRepository) FindRecent(ctx context.Context, limit int) ([]*model.Report, error) {
	m.lastLimit = limit
	return m.recent, nil
}

type mockPublisher struct {
	runIDs []string
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, runID string, t *table.Table) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.runIDs = append(m.runIDs, runID)
	return t.Len(), nil
}

func newRunService(t *testing.T, repo *mockRunRepository, pub *mockPublisher) RunService {
	cfg := testConfig(t, nil)
	svc := NewCleaningService(cfg, io.Discard)
	v := validator.NewCleanRequestValidator(100)

	switch {
	case repo != nil && pub != nil:
		return NewRunService(svc, v, repo, pub, cfg)
	case repo != nil:
		return NewRunService(svc, v, repo, nil, cfg)
	case pub != nil:
		return NewRunService(svc, v, nil, pub, cfg)
	default:
		return NewRunService(svc, v, nil, nil, cfg)
	}
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.StatusCode())
}

// ────────────────────────────────────────────────
// Process
// ────────────────────────────────────────────────

func TestProcess_StoresAndPublishes(t *testing.T) {
	repo := &mockRunRepository{}
	pub := &mockPublisher{}
	svc := newRunService(t, repo, pub)

	resp, err := svc.Process(context.Background(), &model.CleanRequest{Table: rawCustomers(t)})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Table.Len())
	require.Len(t, repo.saved, 1)
	assert.Equal(t, resp.Report.RunID, repo.saved[0].RunID)
	assert.Len(t, repo.saved[0].Rows, 4)
	assert.Equal(t, []string{resp.Report.RunID}, pub.runIDs)
}

func TestProcess_WithoutStorage(t *testing.T) {
	resp, err := newRunService(t, nil, nil).
		Process(context.Background(), &model.CleanRequest{Table: rawCustomers(t)})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Report.DuplicatesRemoved)
}

func TestProcess_ValidationError(t *testing.T) {
	svc := newRunService(t, &mockRunRepository{}, nil)

	_, err := svc.Process(context.Background(), &model.CleanRequest{
		Table:   rawCustomers(t),
		Options: model.CleanOptions{VehicleClassMode: "lenient"},
	})

	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
	assert.Contains(t, apperrors.AsAppError(err).Details, "options.vehicle_class_mode")
}

func TestProcess_InvalidTableAfterRename(t *testing.T) {
	repo := &mockRunRepository{}
	svc := newRunService(t, repo, nil)
	tbl := mustTable(t, []string{"ST", "state"}, []any{"ca", "wa"})

	_, err := svc.Process(context.Background(), &model.CleanRequest{Table: tbl})

	requireAppError(t, err, apperrors.CodeInvalidTable, http.StatusBadRequest)
	assert.Empty(t, repo.saved)
}

func TestProcess_StorageFailure(t *testing.T) {
	pub := &mockPublisher{}
	svc := newRunService(t, &mockRunRepository{saveErr: errors.New("connection reset")}, pub)

	_, err := svc.Process(context.Background(), &model.CleanRequest{Table: rawCustomers(t)})

	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.Empty(t, pub.runIDs)
}

func TestProcess_PublishFailure(t *testing.T) {
	svc := newRunService(t, nil, &mockPublisher{err: errors.New("broker unavailable")})

	_, err := svc.Process(context.Background(), &model.CleanRequest{Table: rawCustomers(t)})

	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.ErrorContains(t, err, "broker unavailable")
}

// ────────────────────────────────────────────────
// GetRun / ListRuns
// ────────────────────────────────────────────────

func TestGetRun(t *testing.T) {
	report := &model.Report{RunID: "0d8b8c3e-7a59-4c49-9d1c-0d6f1c1f6d7a", Columns: []string{"state"}, RowsOut: 1}
	stored := model.NewRun(report, mustTable(t, []string{"state"}, []any{"CALIFORNIA"}))

	repo := &mockRunRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Run, error) {
		if id == report.RunID {
			return stored, nil
		}
		return nil, fmt.Errorf("%w: %s", cleaningerrors.ErrNotFound, id)
	}}
	svc := newRunService(t, repo, nil)

	resp, err := svc.GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, resp.Report.RunID)
	assert.Equal(t, []any{"CALIFORNIA"}, columnValues(t, resp.Table, "state"))

	_, err = svc.GetRun(context.Background(), "2b1f0a4e-0000-4000-8000-000000000000")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestGetRun_Errors(t *testing.T) {
	invalid := &mockRunRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Run, error) {
		return nil, fmt.Errorf("%w: %s", cleaningerrors.ErrInvalidID, id)
	}}
	broken := &mockRunRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Run, error) {
		return nil, errors.New("server selection error")
	}}

	tests := []struct {
		name   string
		svc    RunService
		id     string
		code   string
		status int
	}{
		{"empty id", newRunService(t, invalid, nil), "", apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"invalid id", newRunService(t, invalid, nil), "nope", apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"storage error", newRunService(t, broken, nil), "nope", apperrors.CodeInternal, http.StatusInternalServerError},
		{"storage disabled", newRunService(t, nil, nil), "nope", apperrors.CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.GetRun(context.Background(), tt.id)
			requireAppError(t, err, tt.code, tt.status)
		})
	}
}

func TestListRuns_ClampsLimit(t *testing.T) {
	repo := &mockRunRepository{}
	svc := newRunService(t, repo, nil)

	reports, err := svc.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Equal(t, DefaultListLimit, repo.lastLimit)

	_, err = svc.ListRuns(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, repo.lastLimit)
}
