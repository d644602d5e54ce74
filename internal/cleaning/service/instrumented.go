package service

import (
	"context"

	"custclean/pkg/model"
)

type RunObserver interface {
	ObserveRun(report *model.Report, err error)
}

type instrumentedRunService struct {
	RunService
	observer RunObserver
}

// NewInstrumentedRunService reports every Process call to observer. Lookups
// pass through unobserved.
func NewInstrumentedRunService(inner RunService, observer RunObserver) RunService {
	return &instrumentedRunService{
		RunService: inner,
		observer:   observer,
	}
}

func (s *instrumentedRunService) Process(ctx context.Context, req *model.CleanRequest) (*model.CleanResponse, error) {
	resp, err := s.RunService.Process(ctx, req)
	var report *model.Report
	if resp != nil {
		report = resp.Report
	}
	s.observer.ObserveRun(report, err)
	return resp, err
}
