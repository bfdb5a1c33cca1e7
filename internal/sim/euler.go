package sim

// Euler is the explicit first-order method. Kept for accuracy
// comparisons against RK4; not recommended for production runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn System, x State, u Control, t float64, dt float64) State {
	dx := dyn.Derive(x, u, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
