package service

import (
	"context"
	"testing"

	apperrors "custclean/pkg/errors"
	"custclean/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	report *model.Report
	err    error
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveRun(report *model.Report, err error) {
	o.seen = append(o.seen, observation{report: report, err: err})
}

func TestInstrumentedRunService_ObservesProcess(t *testing.T) {
	observer := &recordingObserver{}
	svc := NewInstrumentedRunService(newRunService(t, nil, nil), observer)

	resp, err := svc.Process(context.Background(), &model.CleanRequest{Table: rawCustomers(t)})
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), &model.CleanRequest{})
	require.Error(t, err)

	require.Len(t, observer.seen, 2)
	assert.Same(t, resp.Report, observer.seen[0].report)
	assert.NoError(t, observer.seen[0].err)
	assert.Nil(t, observer.seen[1].report)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(observer.seen[1].err).Code)
}

func TestInstrumentedRunService_LookupsPassThrough(t *testing.T) {
	observer := &recordingObserver{}
	svc := NewInstrumentedRunService(newRunService(t, nil, nil), observer)

	_, err := svc.ListRuns(context.Background(), 5)
	requireAppError(t, err, apperrors.CodeUnavailable, 503)
	assert.Empty(t, observer.seen)
}
