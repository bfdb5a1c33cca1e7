// Package metrics collects per-run growth statistics from observed
// states. Every metric follows the sim.Metric contract: Observe each
// step, Value at the end, Reset between runs.
package metrics

import (
	"math"

	"github.com/verdantlab/lettsim/internal/sim"
)

// FinalDryWeight reports the last observed per-plant dry weight.
type FinalDryWeight struct {
	name string
	last float64
}

func NewFinalDryWeight() *FinalDryWeight {
	return &FinalDryWeight{name: "final_dry_weight"}
}

func (f *FinalDryWeight) Name() string { return f.name }

func (f *FinalDryWeight) Observe(x sim.State, u sim.Control, t float64) {
	f.last = x.Sum()
}

func (f *FinalDryWeight) Value() float64 { return f.last }

func (f *FinalDryWeight) Reset() { f.last = 0 }

// PeakLAI reports the highest leaf-area index seen during a run,
// derived from structural weight at the configured stand density.
type PeakLAI struct {
	name    string
	lar     float64
	rootFr  float64
	density float64
	peak    float64
}

func NewPeakLAI(lar, rootFraction, density float64) *PeakLAI {
	return &PeakLAI{
		name:    "peak_lai",
		lar:     lar,
		rootFr:  rootFraction,
		density: density,
	}
}

func (p *PeakLAI) Name() string { return p.name }

func (p *PeakLAI) Observe(x sim.State, u sim.Control, t float64) {
	if len(x) < 2 {
		return
	}
	lai := p.lar * (1 - p.rootFr) * x[1] * p.density
	p.peak = math.Max(p.peak, lai)
}

func (p *PeakLAI) Value() float64 { return p.peak }

func (p *PeakLAI) Reset() { p.peak = 0 }

// MeanClosure reports the run-average analytic canopy closure under
// the Beer-Lambert law.
type MeanClosure struct {
	name    string
	k       float64
	lar     float64
	rootFr  float64
	density float64
	total   float64
	samples int
}

func NewMeanClosure(k, lar, rootFraction, density float64) *MeanClosure {
	return &MeanClosure{
		name:    "mean_canopy_closure",
		k:       k,
		lar:     lar,
		rootFr:  rootFraction,
		density: density,
	}
}

func (m *MeanClosure) Name() string { return m.name }

func (m *MeanClosure) Observe(x sim.State, u sim.Control, t float64) {
	if len(x) < 2 {
		return
	}
	lai := m.lar * (1 - m.rootFr) * x[1] * m.density
	m.total += 1 - math.Exp(-m.k*lai)
	m.samples++
}

func (m *MeanClosure) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanClosure) Reset() {
	m.total = 0
	m.samples = 0
}

// GrowthRate reports mean dry-weight gain in grams per simulated day.
type GrowthRate struct {
	name    string
	firstT  float64
	firstDW float64
	lastT   float64
	lastDW  float64
	samples int
}

func NewGrowthRate() *GrowthRate {
	return &GrowthRate{name: "mean_growth_per_day"}
}

func (g *GrowthRate) Name() string { return g.name }

func (g *GrowthRate) Observe(x sim.State, u sim.Control, t float64) {
	dw := x.Sum()
	if g.samples == 0 {
		g.firstT = t
		g.firstDW = dw
	}
	g.lastT = t
	g.lastDW = dw
	g.samples++
}

func (g *GrowthRate) Value() float64 {
	span := g.lastT - g.firstT
	if span <= 0 {
		return 0
	}
	return (g.lastDW - g.firstDW) / (span / 86400)
}

func (g *GrowthRate) Reset() {
	g.firstT = 0
	g.firstDW = 0
	g.lastT = 0
	g.lastDW = 0
	g.samples = 0
}
