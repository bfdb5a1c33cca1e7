package sim

import (
	"context"
	"fmt"
)

// RunConfig controls a schedule-driven run.
type RunConfig struct {
	// Dt is the integration step in seconds. Each schedule frame is
	// held constant over exactly one step.
	Dt float64

	// ValidateState stops the run with a StepError when the state
	// picks up a NaN or Inf.
	ValidateState bool

	// OnDay, when set, fires before the first step of each simulated
	// day (frame hour divisible by 24, each day at most once) with the
	// state entering that day. A non-nil return aborts the run.
	OnDay func(day int, x State) error
}

// Summary is what a run leaves behind. Only the final state is
// retained; per-step values stream through observers.
type Summary struct {
	Final      State
	FinalTime  float64
	StepsTaken int
	Metrics    map[string]float64
}

// Runner advances a system across a control schedule. It is not safe
// for concurrent use; run one Runner per goroutine.
type Runner struct {
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func NewRunner(integrator Integrator) *Runner {
	return &Runner{
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, dyn System, x0 State, schedule []Frame, cfg RunConfig) (*Summary, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("empty control schedule")
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	lastDay := -1

	summary := &Summary{Metrics: make(map[string]float64)}

	for i, fr := range schedule {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if cfg.OnDay != nil && fr.Hour%24 == 0 {
			day := fr.Hour / 24
			if day != lastDay {
				lastDay = day
				if err := cfg.OnDay(day, x.Clone()); err != nil {
					return summary, fmt.Errorf("day %d hook: %w", day, err)
				}
			}
		}

		x = r.integrator.Step(dyn, x, fr.U, t, cfg.Dt)
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			summary.Final = x
			summary.FinalTime = t
			return summary, StepError{Step: i, Time: t, Message: "invalid state (NaN/Inf)"}
		}

		for _, m := range r.metrics {
			m.Observe(x, fr.U, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(x, fr.U, t)
		}
		summary.StepsTaken++
	}

	summary.Final = x
	summary.FinalTime = t
	for _, m := range r.metrics {
		summary.Metrics[m.Name()] = m.Value()
	}

	return summary, nil
}
