package climate

import (
	"context"
	"fmt"
	"time"
)

// Predictor blends the baseline and recent anomaly into a final hourly estimate.
type Predictor struct {
	engine *Engine
	now    func() time.Time
}

// NewPredictor creates a Predictor. now supplies the current date that anchors
// the recent window; nil means time.Now.
func NewPredictor(engine *Engine, now func() time.Time) *Predictor {
	if now == nil {
		now = time.Now
	}
	return &Predictor{engine: engine, now: now}
}

// Predict estimates variableID at pt for the day of year of date.
// Only an unknown variable or a cancelled ctx produce an error.
func (p *Predictor) Predict(ctx context.Context, variableID string, pt GridPoint, date time.Time) (Prediction, error) {
	v, err := Resolve(variableID)
	if err != nil {
		return Prediction{}, err
	}

	key := KeyOf(date)

	baseline, err := p.engine.Baseline(ctx, v, pt, key)
	if err != nil {
		return Prediction{}, fmt.Errorf("baseline %s: %w", v.ID, err)
	}

	anomaly, err := p.engine.Anomaly(ctx, v, pt, key, baseline.Series, p.now())
	if err != nil {
		return Prediction{}, fmt.Errorf("anomaly %s: %w", v.ID, err)
	}

	hourly := Combine(baseline.Series, anomaly.Series)
	v.Conversion.Apply(&hourly)

	var coverage float64
	if baseline.Attempted > 0 {
		coverage = float64(baseline.Years) / float64(baseline.Attempted)
	}

	return Prediction{
		Variable:      v.ID,
		Hourly:        hourly,
		BaselineYears: baseline.Years,
		AnomalyYears:  anomaly.Years,
		Coverage:      coverage,
	}, nil
}
