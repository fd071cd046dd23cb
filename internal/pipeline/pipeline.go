package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
	"github.com/LabSOIL/sensor-toolbox/internal/observability"
)

// Extractor yields raw sensor lines one at a time, returning io.EOF when the
// input is exhausted.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawLine, error)
}

// Transformer converts one raw line into a calibrated record.
type Transformer interface {
	Transform(ctx context.Context, line domain.RawLine) (domain.VWCRecord, error)
}

// Loader writes one calibrated record to a destination.
type Loader interface {
	Load(ctx context.Context, rec domain.VWCRecord) error
}

// Pipeline drives the parse-calibrate-emit loop over a complete input.
// Exactly one record is in flight at a time; the first failure of any stage
// aborts the run. There is no partial-success mode.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability. Every
// loader receives every record, in input order.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the pipeline has processed at least one
// record, or an error describing why the run is not yet producing output.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any records yet")
	}
	return nil
}

// Run streams the whole input through the pipeline and returns the number of
// records processed. On failure the count covers the records emitted before
// the error.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	start := time.Now()
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, fmt.Errorf("run cancelled: %w", err)
		}

		line, err := p.extractor.Extract(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read input: %w", err)
		}

		rec, err := p.transformer.Transform(ctx, line)
		if err != nil {
			p.metrics.RecordsRejected.Inc()
			p.logger.Error("record rejected", "line", line.Number, "error", err)
			return count, err
		}

		for _, l := range p.loaders {
			if err := l.Load(ctx, rec); err != nil {
				return count, fmt.Errorf("write record from line %d: %w", line.Number, err)
			}
		}

		count++
		p.metrics.RecordsProcessed.Inc()
		if !rec.Masked {
			p.metrics.VWCValues.Observe(rec.VWC)
		}
		p.ready.Store(true)
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("pipeline finished", "records", count, "duration", time.Since(start))
	return count, nil
}
