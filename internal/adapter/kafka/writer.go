// Package kafka publishes calibrated records to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/LabSOIL/sensor-toolbox/internal/config"
	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

// Writer produces calibrated records to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	soil   domain.SoilType
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic. The soil
// type travels in a message header so consumers can tell calibration
// runs apart without parsing the payload.
func NewWriter(cfg *config.Config, soil domain.SoilType, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, soil: soil, logger: logger}
}

// Load serializes and publishes one calibrated record.
func (w *Writer) Load(ctx context.Context, rec domain.VWCRecord) error {
	msg, err := serializeToMessage(rec, w.soil)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VWCRecord into a Kafka message keyed by
// the reading's timestamp.
func serializeToMessage(rec domain.VWCRecord, soil domain.SoilType) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize vwc record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Timestamp.Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "soil_type", Value: []byte(soil.String())},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
