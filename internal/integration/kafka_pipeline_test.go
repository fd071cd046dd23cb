//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LabSOIL/sensor-toolbox/internal/adapter/csvfile"
	"github.com/LabSOIL/sensor-toolbox/internal/adapter/kafka"
	"github.com/LabSOIL/sensor-toolbox/internal/config"
	"github.com/LabSOIL/sensor-toolbox/internal/domain"
	"github.com/LabSOIL/sensor-toolbox/internal/observability"
	"github.com/LabSOIL/sensor-toolbox/internal/pipeline"
)

const testTopic = "calibrated-vwc-test"

// publishedRecord holds a deserialized message read from the output topic.
type publishedRecord struct {
	Record  domain.VWCRecord
	Key     string
	Headers map[string]string
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedRecord {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from output topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.VWCRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal published record")

	return publishedRecord{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestPipelineEndToEnd wires the full pipeline (file Reader → Transformer →
// CSV Writer + Kafka Writer) against a real broker and verifies that every
// input row lands both in the output table and on the topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	input := filepath.Join(t.TempDir(), "data.csv")
	lines := []string{
		"0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;",
		"1;2023.05.30 07:00;4;21.875;22;22.25;352;202;0;",
		"2;2023.05.30 07:15;4;21.625;21.75;22;1229;202;0;",
		"3;2023.05.30 07:30;4;21.5;21.625;21.875;1608;202;0;",
	}
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	reader, err := csvfile.NewReader(input)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	output := filepath.Join(t.TempDir(), "output.csv")
	writer, err := csvfile.NewWriter(output)
	require.NoError(t, err)

	publisher := kafka.NewWriter(cfg, domain.Universal, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	engine := domain.NewEngine(domain.Universal.Calibration(), domain.DefaultConstants(), false)
	p := pipeline.New(
		reader,
		pipeline.NewTransformer(engine),
		[]pipeline.Loader{writer, publisher},
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	count, err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, len(lines), count)
	require.NoError(t, writer.Commit())

	// The committed table has a header plus one row per input line.
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, rows, len(lines)+1)
	assert.Equal(t, "datetime,raw,temp,VWC_moisture", rows[0])

	// Every record also arrived on the topic, in order, with headers.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]publishedRecord, 0, len(lines))
	for len(received) < len(lines) {
		received = append(received, readPublished(ctx, t, consumer))
	}

	for i, pr := range received {
		assert.Equal(t, "universal", pr.Headers["soil_type"], "missing soil_type header")
		_, err := time.Parse(time.RFC3339, pr.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")
		assert.Equal(t, pr.Record.Timestamp.Format(time.RFC3339), pr.Key)
		assert.GreaterOrEqual(t, pr.Record.VWC, 0.0)
		assert.LessOrEqual(t, pr.Record.VWC, 1.0)
		// Topic order matches input order.
		wantMinute := 45 + 15*i
		assert.Equal(t, time.Date(2023, 5, 30, 6+wantMinute/60, wantMinute%60, 0, 0, time.UTC), pr.Record.Timestamp)
	}

	// Spot-check the last row survived with its raw reading intact.
	assert.Equal(t, 1608, received[3].Record.RawMoisture)
}

// TestPipelineFailFast verifies that a malformed row aborts the run and the
// output table is never finalized.
func TestPipelineFailFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	input := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;\n"+
			"1;2023.05.30 07:00;4;21.875;22;broken;352;202;0;\n"), 0o644))

	reader, err := csvfile.NewReader(input)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	output := filepath.Join(t.TempDir(), "output.csv")
	writer, err := csvfile.NewWriter(output)
	require.NoError(t, err)

	publisher := kafka.NewWriter(cfg, domain.Sand, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	engine := domain.NewEngine(domain.Sand.Calibration(), domain.DefaultConstants(), false)
	p := pipeline.New(
		reader,
		pipeline.NewTransformer(engine),
		[]pipeline.Loader{writer, publisher},
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	count, err := p.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, count)

	var malformed *domain.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)

	writer.Abort()

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "aborted run must not leave an output table")
}
