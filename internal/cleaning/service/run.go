package service

import (
	"context"
	"errors"

	cleaningerrors "custclean/internal/cleaning/errors"
	"custclean/internal/cleaning/publisher"
	"custclean/internal/cleaning/repository"
	"custclean/internal/cleaning/validator"
	"custclean/pkg/config"
	apperrors "custclean/pkg/errors"
	"custclean/pkg/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RunService validates a request, cleans its table and hands the result to
// the optional run store and record publisher.
type RunService interface {
	Process(ctx context.Context, req *model.CleanRequest) (*model.CleanResponse, error)
	GetRun(ctx context.Context, id string) (*model.CleanResponse, error)
	ListRuns(ctx context.Context, limit int) ([]*model.Report, error)
}

type runService struct {
	cleaner   CleaningService
	validator *validator.CleanRequestValidator
	repo      repository.RunRepository
	publisher publisher.RecordPublisher
	cfg       *config.Config
}

// NewRunService accepts a nil repo or publisher to turn storage or
// publishing off.
func NewRunService(
	cleaner CleaningService,
	validator *validator.CleanRequestValidator,
	repo repository.RunRepository,
	publisher publisher.RecordPublisher,
	cfg *config.Config,
) RunService {
	return &runService{
		cleaner:   cleaner,
		validator: validator,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *runService) Process(ctx context.Context, req *model.CleanRequest) (*model.CleanResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Clean request validation failed", "error", err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Clean request validation failed", validationErrs.Details())
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	cleaned, report, err := s.cleaner.Clean(ctx, req.Table, req.Options)
	if err != nil {
		return nil, apperrors.FromPipelineError(err)
	}
	log := s.cfg.Log.WithRun(report.RunID)

	if s.repo != nil {
		if err := s.repo.Save(ctx, model.NewRun(report, cleaned)); err != nil {
			log.Error("Failed to store cleaning run", "error", err)
			return nil, apperrors.Internal("Failed to store cleaning run", err)
		}
	}

	if s.publisher != nil {
		published, err := s.publisher.Publish(ctx, report.RunID, cleaned)
		if err != nil {
			log.Error("Failed to publish cleaned records", "error", err)
			return nil, apperrors.Internal("Failed to publish cleaned records", err)
		}
		log.Info("Published cleaned records", "records", published)
	}

	return &model.CleanResponse{Table: cleaned, Report: report}, nil
}

func (s *runService) GetRun(ctx context.Context, id string) (*model.CleanResponse, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Cleaning run ID cannot be empty")
	}
	if s.repo == nil {
		return nil, apperrors.Unavailable("Cleaning run storage")
	}

	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, cleaningerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Cleaning run", id)
		}
		if errors.Is(err, cleaningerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid cleaning run ID format")
		}
		s.cfg.Log.Error("Failed to get cleaning run", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve cleaning run", err)
	}

	t, err := run.Table()
	if err != nil {
		s.cfg.Log.Error("Stored cleaning run is corrupt", "id", id, "error", err)
		return nil, apperrors.Internal("Stored cleaning run is corrupt", err)
	}

	report := run.Report
	return &model.CleanResponse{Table: t, Report: &report}, nil
}

func (s *runService) ListRuns(ctx context.Context, limit int) ([]*model.Report, error) {
	if s.repo == nil {
		return nil, apperrors.Unavailable("Cleaning run storage")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	reports, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to list cleaning runs", "limit", limit, "error", err)
		return nil, apperrors.Internal("Failed to list cleaning runs", err)
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	return reports, nil
}
