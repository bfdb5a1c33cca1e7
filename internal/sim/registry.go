package sim

import "fmt"

var integrators = map[string]func() Integrator{
	"rk4":   func() Integrator { return NewRK4() },
	"euler": func() Integrator { return NewEuler() },
}

func NewIntegrator(name string) (Integrator, error) {
	fn, ok := integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Integrators() []string {
	return []string{"euler", "rk4"}
}
