package gocircular

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// TruthSim generates ground truth trajectories and noisy measurements of a
// circular state: x_{k+1} = Transition(x_k) + w, z_k = Measurement(x_k) + v.
type TruthSim struct {
	// InitialState is the true state at step zero.
	InitialState float64
	// Transition advances the state by one step, before process noise.
	Transition func(θ float64) float64
	// Measurement maps a state to its noise-free measurement. Nil means the
	// state is measured directly.
	Measurement func(θ float64) float64
	// ProcessNoise and MeasurementNoise must both evaluate and sample.
	ProcessNoise     SampledNoise
	MeasurementNoise SampledNoise
}

// measure returns the measurement function, defaulting to identity.
func (sim TruthSim) measure() func(float64) float64 {
	if sim.Measurement == nil {
		return func(θ float64) float64 { return θ }
	}
	return sim.Measurement
}

// Simulate returns one trajectory of steps true states and their
// measurements.
func (sim TruthSim) Simulate(rng *rand.Rand, steps int) (states, measurements []float64, err error) {
	if steps <= 0 {
		return nil, nil, fmt.Errorf("Simulate: %w: steps %d must be positive", ErrValidation, steps)
	}
	if sim.Transition == nil || sim.ProcessNoise == nil || sim.MeasurementNoise == nil {
		return nil, nil, fmt.Errorf("Simulate: %w: transition and both noises must be set", ErrValidation)
	}
	if rng == nil {
		rng = defaultRNG()
	}
	h := sim.measure()
	procDraws := sim.ProcessNoise.Sample(rng, steps)
	measDraws := sim.MeasurementNoise.Sample(rng, steps)
	states = make([]float64, steps)
	measurements = make([]float64, steps)
	x := WrapTo2Pi(sim.InitialState)
	for k := 0; k < steps; k++ {
		if k > 0 {
			x = WrapTo2Pi(sim.Transition(x) + procDraws[k])
		}
		states[k] = x
		measurements[k] = WrapTo2Pi(h(x) + measDraws[k])
	}
	return states, measurements, nil
}

// Likelihood returns the measurement likelihood induced by the simulation:
// the measurement noise density evaluated at the innovation z - h(θ).
func (sim TruthSim) Likelihood() Likelihood {
	h := sim.measure()
	return func(measurement, state float64) float64 {
		return sim.MeasurementNoise.PDF([]float64{measurement - h(state)})[0]
	}
}

// MonteCarloRun stores one filtered trajectory.
type MonteCarloRun struct {
	Truth        []float64
	Measurements []float64
	Estimates    []float64
	Errors       []float64
}

// MonteCarloRuns stores repeated filtered trajectories of the same
// simulation, for judging average filter behavior.
type MonteCarloRuns struct {
	runs, steps int
	Runs        []MonteCarloRun
}

// NewMonteCarloRuns simulates the given scenario runs times and filters
// each trajectory with a fresh particle filter.
func NewMonteCarloRuns(runs, steps, particles int, sim TruthSim, rng *rand.Rand) (MonteCarloRuns, error) {
	if runs <= 0 {
		return MonteCarloRuns{}, fmt.Errorf("NewMonteCarloRuns: %w: runs %d must be positive", ErrValidation, runs)
	}
	if rng == nil {
		rng = defaultRNG()
	}
	l := sim.Likelihood()
	all := make([]MonteCarloRun, runs)
	for r := range all {
		states, measurements, err := sim.Simulate(rng, steps)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		kf, err := NewDiscreteFilter(particles, rng)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		run := MonteCarloRun{
			Truth:        states,
			Measurements: measurements,
			Estimates:    make([]float64, steps),
			Errors:       make([]float64, steps),
		}
		for k := 0; k < steps; k++ {
			if k > 0 {
				if err := kf.PredictNonlinear(sim.Transition, sim.ProcessNoise); err != nil {
					return MonteCarloRuns{}, err
				}
			}
			if err := kf.UpdateNonlinear(l, measurements[k]); err != nil {
				return MonteCarloRuns{}, err
			}
			est, err := kf.Estimate().MeanDirection()
			if err != nil {
				return MonteCarloRuns{}, err
			}
			run.Estimates[k] = est
			run.Errors[k] = AngularError(est, states[k])
		}
		all[r] = run
	}
	return MonteCarloRuns{runs, steps, all}, nil
}

// MeanError returns the angular error averaged over runs at the given
// step. Errors live on [0, π], so the linear mean applies.
func (mc MonteCarloRuns) MeanError(step int) float64 {
	errs := make([]float64, mc.runs)
	for r, run := range mc.Runs {
		errs[r] = run.Errors[step]
	}
	return stat.Mean(errs, nil)
}

// MeanEstimate returns the circular mean of the estimates over runs at the
// given step.
func (mc MonteCarloRuns) MeanEstimate(step int) float64 {
	ests := make([]float64, mc.runs)
	for r, run := range mc.Runs {
		ests[r] = run.Estimates[step]
	}
	return WrapTo2Pi(stat.CircularMean(ests, nil))
}

// RMSE returns the root mean square angular error over all runs and steps.
func (mc MonteCarloRuns) RMSE() float64 {
	var sum float64
	for _, run := range mc.Runs {
		for _, e := range run.Errors {
			sum += e * e
		}
	}
	return math.Sqrt(sum / float64(mc.runs*mc.steps))
}

// String implements the Stringer interface.
func (mc MonteCarloRuns) String() string {
	return fmt.Sprintf("MonteCarlo{runs=%d, steps=%d}", mc.runs, mc.steps)
}
