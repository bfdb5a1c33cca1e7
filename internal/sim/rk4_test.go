package sim

import (
	"math"
	"testing"
)

type oscillator struct{}

func (o *oscillator) Derive(x State, u Control, t float64) State {
	return State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := State{1.0, 0.0}
	u := Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4BeatsEuler(t *testing.T) {
	dyn := &oscillator{}
	rk4 := NewRK4()
	euler := NewEuler()

	dt := 0.05
	steps := 200

	xr := State{1.0, 0.0}
	xe := State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		tNow := float64(i) * dt
		xr = rk4.Step(dyn, xr, nil, tNow, dt)
		xe = euler.Step(dyn, xe, nil, tNow, dt)
	}

	exact := math.Cos(float64(steps) * dt)
	errRK4 := math.Abs(xr[0] - exact)
	errEuler := math.Abs(xe[0] - exact)

	if errRK4 >= errEuler {
		t.Errorf("rk4 error %.2e not smaller than euler error %.2e", errRK4, errEuler)
	}
}

func TestRK4ScratchResize(t *testing.T) {
	integ := NewRK4()
	dyn := &oscillator{}

	x2 := integ.Step(dyn, State{1.0, 0.0}, nil, 0, 0.01)
	if len(x2) != 2 {
		t.Fatalf("state length = %d, expected 2", len(x2))
	}

	// Reusing the same integrator at a different dimension must not
	// carry stale buffers.
	big := &scaledDecay{n: 4}
	x4 := integ.Step(big, State{1, 1, 1, 1}, nil, 0, 0.01)
	if len(x4) != 4 {
		t.Fatalf("state length = %d, expected 4", len(x4))
	}
	for i, v := range x4 {
		if v >= 1.0 || v <= 0.9 {
			t.Errorf("component %d = %v, expected decay within (0.9, 1.0)", i, v)
		}
	}
}

type scaledDecay struct{ n int }

func (s *scaledDecay) Derive(x State, u Control, t float64) State {
	dx := make(State, s.n)
	for i := range dx {
		dx[i] = -x[i]
	}
	return dx
}

func (s *scaledDecay) StateDim() int   { return s.n }
func (s *scaledDecay) ControlDim() int { return 0 }

// A system may return the same backing buffer from every Derive call;
// the integrator has to copy before the next stage.
type bufferReuser struct {
	scratch State
}

func (b *bufferReuser) Derive(x State, u Control, t float64) State {
	if b.scratch == nil {
		b.scratch = make(State, 2)
	}
	b.scratch[0] = x[1]
	b.scratch[1] = -x[0]
	return b.scratch
}

func (b *bufferReuser) StateDim() int   { return 2 }
func (b *bufferReuser) ControlDim() int { return 0 }

func TestRK4DeriveBufferReuse(t *testing.T) {
	fresh := &oscillator{}
	reused := &bufferReuser{}

	a := NewRK4().Step(fresh, State{1.0, 0.0}, nil, 0, 0.01)
	b := NewRK4().Step(reused, State{1.0, 0.0}, nil, 0, 0.01)

	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-15 {
			t.Errorf("component %d: buffer-reusing system gave %v, expected %v", i, b[i], a[i])
		}
	}
}

func TestNewIntegrator(t *testing.T) {
	if _, err := NewIntegrator("rk4"); err != nil {
		t.Errorf("rk4 lookup failed: %v", err)
	}
	if _, err := NewIntegrator("euler"); err != nil {
		t.Errorf("euler lookup failed: %v", err)
	}
	if _, err := NewIntegrator("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	names := Integrators()
	if len(names) != 2 {
		t.Errorf("Integrators() = %v, expected 2 entries", names)
	}
}
