package pipeline

import (
	"context"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

// VWCTransformer implements Transformer by chaining the record parser and
// the calibration engine for one soil type.
type VWCTransformer struct {
	engine *domain.Engine
}

// NewTransformer creates a VWCTransformer around a calibration engine.
func NewTransformer(engine *domain.Engine) *VWCTransformer {
	return &VWCTransformer{engine: engine}
}

func (t *VWCTransformer) Transform(_ context.Context, line domain.RawLine) (domain.VWCRecord, error) {
	obs, err := domain.ParseRecord(line.Text, line.Number)
	if err != nil {
		return domain.VWCRecord{}, err
	}
	return t.engine.Convert(obs)
}
