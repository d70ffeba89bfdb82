package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/config"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

const publishBatchSize = 100

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes collected rows to a Kafka topic, one message per row.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured row topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish sends rows in batches. Rows with the same sample key land on the
// same partition.
func (w *Writer) Publish(ctx context.Context, runID string, collectedAt time.Time, rows []domain.CollectedRow) error {
	for start := 0; start < len(rows); start += publishBatchSize {
		end := min(start+publishBatchSize, len(rows))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, row := range rows[start:end] {
			msg, err := serializeToMessage(row, runID, collectedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish rows %d-%d: %w", start, end, err)
		}
		w.metrics.RowsPublished.Add(float64(len(msgs)))
	}
	w.logger.Info("rows published", "rows", len(rows), "run_id", runID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a row into a Kafka message.
func serializeToMessage(row domain.CollectedRow, runID string, collectedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "collected_at", Value: []byte(collectedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
