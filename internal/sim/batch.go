package sim

import (
	"context"
	"sync"
)

// Job is one independent run in a batch: its own system instance,
// integrator, schedule and observers. Jobs must not share mutable
// state.
type Job struct {
	Name       string
	Dyn        System
	Integrator Integrator
	X0         State
	Schedule   []Frame
	Config     RunConfig
	Metrics    []Metric
	Observers  []Observer
}

// RunBatch executes jobs concurrently, one Runner per goroutine.
func RunBatch(ctx context.Context, jobs []Job) (map[string]*Summary, error) {
	summaries := make([]*Summary, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			job := jobs[idx]
			runner := NewRunner(job.Integrator)
			for _, m := range job.Metrics {
				runner.AddMetric(m)
			}
			for _, o := range job.Observers {
				runner.AddObserver(o)
			}
			summaries[idx], errs[idx] = runner.Run(ctx, job.Dyn, job.X0, job.Schedule, job.Config)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string]*Summary, len(jobs))
	for i, job := range jobs {
		out[job.Name] = summaries[i]
	}
	return out, nil
}
