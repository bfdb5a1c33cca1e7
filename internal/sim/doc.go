// Package sim provides the numerical core for schedule-driven crop
// simulation.
//
// The package defines the fundamental types for fixed-step integration
// of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper ([RK4], [Euler])
//   - [Runner]: advances a system across a control [Frame] schedule
//
// # Example
//
//	model, _ := crop.New(crop.DefaultConfig())
//	runner := sim.NewRunner(sim.NewRK4())
//	summary, _ := runner.Run(ctx, model, model.InitialState(), frames, cfg)
//
// # Thread Safety
//
// Runner and RK4 values are NOT thread-safe; use one per goroutine.
package sim
