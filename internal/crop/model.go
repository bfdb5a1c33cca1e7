package crop

import (
	"fmt"
	"math"
	"time"

	"github.com/verdantlab/lettsim/internal/sim"
)

// DefaultControlInterval is how long one control vector is held.
const DefaultControlInterval = 5 * time.Minute

// Config describes a model at construction.
type Config struct {
	// InitialDryWeight is the per-plant dry weight in grams, split
	// 20/80 into the assimilate and structural pools.
	InitialDryWeight float64

	// PlantDensity is the stand density in plants per square meter.
	PlantDensity float64

	// Parameters overrides the coefficient set; nil means
	// DefaultParameters.
	Parameters ParamSet

	// ControlInterval is the zero-order-hold step; zero means
	// DefaultControlInterval.
	ControlInterval time.Duration

	// Interception selects the canopy light-interception mode.
	Interception InterceptionMode
}

func DefaultConfig() Config {
	return Config{
		InitialDryWeight: 0.04,
		PlantDensity:     90,
		ControlInterval:  DefaultControlInterval,
		Interception:     BeerLambert,
	}
}

// Model is the two-pool lettuce dry-matter system: x[0] is the
// non-structural assimilate pool, x[1] structural dry weight, both in
// grams per plant. The control vector per step is
// (temperature, radiation, co2, plant density).
//
// A Model owns its state and coefficient vector exclusively and is not
// safe for concurrent use.
type Model struct {
	store    *Store
	coeffs   [NumCoeffs]float64
	state    sim.State
	initial  float64
	density  float64
	h        float64
	mode     InterceptionMode
	override float64
	integ    *sim.RK4
	elapsed  float64
	dx       sim.State
}

func New(cfg Config) (*Model, error) {
	params := cfg.Parameters
	if params == nil {
		params = DefaultParameters()
	}
	if err := Validate(cfg.InitialDryWeight, cfg.PlantDensity, params); err != nil {
		return nil, err
	}

	interval := cfg.ControlInterval
	if interval == 0 {
		interval = DefaultControlInterval
	}

	m := &Model{
		store:   NewStore(params),
		initial: cfg.InitialDryWeight,
		density: cfg.PlantDensity,
		h:       interval.Seconds(),
		mode:    cfg.Interception,
		integ:   sim.NewRK4(),
		dx:      make(sim.State, 2),
	}
	m.state = m.initialSplit()
	m.coeffs = m.store.Vector(m.override)
	return m, nil
}

func (m *Model) initialSplit() sim.State {
	return sim.State{m.initial * 0.2, m.initial * 0.8}
}

// Derive evaluates the growth rate at state x under control u. The
// returned slice is an internal buffer reused across calls.
func (m *Model) Derive(x sim.State, u sim.Control, _ float64) sim.State {
	temp, rad, co2, pd := u[0], u[1], u[2], u[3]

	// Canopy closure is a per-land-area phenomenon while the pools are
	// kept per plant: scale the pools to population level, evaluate
	// the rates there, then divide the rates back out. Only the
	// nonlinear canopy term is affected; ratio terms cancel.
	X0 := x[0] * pd
	X1 := x[1] * pd

	// Positional unpack; slot order is fixed by coeffOrder.
	p := &m.coeffs
	cR, cQ10R := p[0], p[1]
	cEpsilon, cW := p[2], p[3]
	gBnd, gStm := p[4], p[5]
	cCar1, cCar2, cCar3 := p[6], p[7], p[8]
	cGrMax, cr := p[9], p[10]
	cRespSht, cRespRt := p[11], p[12]
	cQ10Gr, cQ10Resp := p[13], p[14]
	cT, cK, cLar := p[15], p[16], p[17]
	cA, cB := p[18], p[19]
	externalLI := p[20]

	R := cR * math.Pow(cQ10R, (temp-20)/10)
	lue := cEpsilon * (co2 - R) / (co2 + 2*R)
	gCO2 := 1 / (1/gBnd + 1/gStm + 1/(cCar1*temp*temp+cCar2*temp+cCar3))

	var interception float64
	if m.mode == External {
		interception = externalLI
	} else {
		lai := cLar * (1 - cT) * X1
		interception = beerLambert(lai, cK)
	}

	fPhotoMax := (lue * rad * gCO2 * cW * (co2 - R)) /
		(lue*rad + gCO2*cW*(co2-R))
	fPhoto := fPhotoMax * interception

	rgr := cGrMax * (X0 / (cr*X1 + X0)) *
		math.Pow(cQ10Gr, (temp-20)/10)
	fResp := (cRespSht*(1-cT)*X1 + cRespRt*cT*X1) *
		math.Pow(cQ10Resp, (temp-25)/10)

	m.dx[0] = (cA*fPhoto - rgr*X1 - fResp -
		(1-cB)/cB*rgr*X1) / pd
	m.dx[1] = rgr * X1 / pd
	return m.dx
}

func (m *Model) StateDim() int   { return 2 }
func (m *Model) ControlDim() int { return 4 }

// Step advances the state in place by one control interval with the
// control vector held constant. It never fails on numeric input;
// pathological parameter or control combinations surface as non-finite
// state values.
func (m *Model) Step(u sim.Control) {
	m.state = m.integ.Step(m, m.state, u, m.elapsed, m.h)
	m.elapsed += m.h
}

// Reset restores the initial 20/80 pool split. Parameters, the
// interception mode and the override are left untouched.
func (m *Model) Reset() {
	m.state = m.initialSplit()
	m.elapsed = 0
}

// UpdateParameters merges a partial coefficient set and re-derives the
// flat vector. Biomass state and the interception override are
// preserved. On error the store and vector are unchanged.
func (m *Model) UpdateParameters(partial ParamSet) error {
	if err := m.store.Update(partial); err != nil {
		return err
	}
	m.coeffs = m.store.Vector(m.override)
	return nil
}

// SetExternalLightInterception stores an observed canopy-closure value
// into the override slot. Outside [0, 1] the call fails and the prior
// value is retained. The value only enters the rate function in
// External mode.
func (m *Model) SetExternalLightInterception(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: got %g", ErrInterceptionRange, v)
	}
	m.override = v
	m.coeffs[NumCoeffs-1] = v
	return nil
}

func (m *Model) State() (x0, x1 float64) {
	return m.state[0], m.state[1]
}

// CurrentState returns a copy suitable for handing to observers.
func (m *Model) CurrentState() sim.State { return m.state.Clone() }

// InitialState returns the 20/80 split the model starts from, for
// seeding external runs over the same system.
func (m *Model) InitialState() sim.State { return m.initialSplit() }

// TotalDryWeight is the per-plant dry weight x0 + x1 in grams.
func (m *Model) TotalDryWeight() float64 {
	return m.state[0] + m.state[1]
}

// LeafAreaIndex reports leaf area per ground area at the configured
// stand density.
func (m *Model) LeafAreaIndex() float64 {
	return m.leafAreaIndex(m.state[1])
}

func (m *Model) leafAreaIndex(x1 float64) float64 {
	cLar := m.coeffs[17]
	cT := m.coeffs[15]
	return cLar * (1 - cT) * x1 * m.density
}

// CanopyClosure reports the light-interception fraction the rate
// function would use at the current state.
func (m *Model) CanopyClosure() float64 {
	if m.mode == External {
		return m.override
	}
	return beerLambert(m.LeafAreaIndex(), m.coeffs[16])
}

func (m *Model) Mode() InterceptionMode        { return m.mode }
func (m *Model) Override() float64             { return m.override }
func (m *Model) Density() float64              { return m.density }
func (m *Model) InitialDryWeight() float64     { return m.initial }
func (m *Model) ControlInterval() time.Duration {
	return time.Duration(m.h * float64(time.Second))
}
func (m *Model) Elapsed() time.Duration {
	return time.Duration(m.elapsed * float64(time.Second))
}

// Params exposes the live coefficient map backing the model.
func (m *Model) Params() ParamSet { return m.store.Params() }
