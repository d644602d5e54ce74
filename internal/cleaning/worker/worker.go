package worker

import (
	"context"
	"errors"

	"custclean/internal/cleaning/service"
	apperrors "custclean/pkg/errors"
	"custclean/pkg/kafka"
	"custclean/pkg/logger"
	"custclean/pkg/model"
)

// TableWorker cleans the tables submitted on the raw topic.
type TableWorker struct {
	runs service.RunService
	log  *logger.Logger
}

func NewTableWorker(runs service.RunService, log *logger.Logger) *TableWorker {
	return &TableWorker{
		runs: runs,
		log:  log,
	}
}

// Handle is a kafka.MessageHandler. Requests that can never succeed are
// reported as permanent so the consumer moves them to the DLQ right away.
func (w *TableWorker) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != kafka.EventTableSubmitted {
		w.log.Warn("Skipping message with unexpected event type",
			"event_type", eventType,
			"offset", msg.Offset,
		)
		return nil
	}

	var req model.CleanRequest
	if err := msg.DecodeValue(&req); err != nil {
		return kafka.NewPermanentError("failed to decode clean request", err)
	}

	resp, err := w.runs.Process(ctx, &req)
	if err != nil {
		if isRejected(err) {
			return kafka.NewPermanentError("clean request rejected", err)
		}
		return kafka.NewTransientError("clean request failed", err)
	}

	w.log.Info("Submitted table cleaned",
		"run_id", resp.Report.RunID,
		"correlation_id", msg.GetCorrelationID(),
		"rows_out", resp.Report.RowsOut,
	)
	return nil
}

func isRejected(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case apperrors.CodeValidation, apperrors.CodeInvalidTable, apperrors.CodeInvalidInput:
		return true
	}
	return false
}
