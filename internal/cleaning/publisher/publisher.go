package publisher

import (
	"context"
	"fmt"

	"custclean/pkg/kafka"
	"custclean/pkg/table"
)

const (
	SchemaVersion  = "1"
	customerColumn = "customer"
)

// Producer is the part of kafka.Producer the publisher needs.
type Producer interface {
	PublishBatch(ctx context.Context, msgs []kafka.Message) error
}

type RecordPublisher interface {
	Publish(ctx context.Context, runID string, t *table.Table) (int, error)
}

// CleanedRecord is the payload of one customer.cleaned event.
type CleanedRecord struct {
	RunID  string                `json:"run_id"`
	Row    int                   `json:"row"`
	Record map[string]table.Cell `json:"record"`
}

type kafkaRecordPublisher struct {
	producer Producer
	source   string
}

func NewKafkaRecordPublisher(producer Producer, source string) RecordPublisher {
	return &kafkaRecordPublisher{
		producer: producer,
		source:   source,
	}
}

// Publish sends one message per row, keyed by customer so that the events of
// one customer land on the same partition.
func (p *kafkaRecordPublisher) Publish(ctx context.Context, runID string, t *table.Table) (int, error) {
	if t.Len() == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, t.Len())
	for i := range t.Len() {
		msg, err := kafka.NewMessage().
			WithKey(recordKey(runID, t, i)).
			WithValue(CleanedRecord{RunID: runID, Row: i, Record: t.Record(i)}).
			WithEventType(kafka.EventCustomerCleaned).
			WithCorrelationID(runID).
			WithSchemaVersion(SchemaVersion).
			WithSource(p.source).
			Build()
		if err != nil {
			return 0, fmt.Errorf("failed to build message for row %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}

	if err := p.producer.PublishBatch(ctx, msgs); err != nil {
		return 0, fmt.Errorf("failed to publish cleaned records: %w", err)
	}
	return len(msgs), nil
}

func recordKey(runID string, t *table.Table, row int) string {
	if col, ok := t.Column(customerColumn); ok {
		if key := col.Cells[row].String(); key != "" {
			return key
		}
	}
	return fmt.Sprintf("%s:%d", runID, row)
}
