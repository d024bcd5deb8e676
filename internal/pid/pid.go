// Package pid implements the closed-loop trim computation shared by all controllers.
package pid

import (
	"math"

	"github.com/markusressel/act2go/internal/util"
)

const (
	// MinDuty is the lower bound of the actuator range in percent
	MinDuty = 0.0
	// MaxDuty is the upper bound of the actuator range in percent
	MaxDuty = 100.0
)

type Gains struct {
	P      float64 `json:"p"`
	I      float64 `json:"i"`
	D      float64 `json:"d"`
	Offset float64 `json:"offset"`
	// maximum magnitude of the integrator, 0 = unlimited
	ILimit float64 `json:"iLimit"`
	// low-pass coefficient of the derivative term in [0, 1), 0 = unfiltered
	DerivativeFilter float64 `json:"derivativeFilter"`
}

// Sanitized returns a copy where every non-finite term is replaced by zero
func (g Gains) Sanitized() Gains {
	return Gains{
		P:                util.FiniteOrZero(g.P),
		I:                util.FiniteOrZero(g.I),
		D:                util.FiniteOrZero(g.D),
		Offset:           util.FiniteOrZero(g.Offset),
		ILimit:           math.Abs(util.FiniteOrZero(g.ILimit)),
		DerivativeFilter: util.Coerce(util.FiniteOrZero(g.DerivativeFilter), 0, 0.99),
	}
}

// Envelope describes what happens to a trim downstream of the engine:
// it is added to the feed-forward base and optionally inverted before
// being clamped to the actuator range.
type Envelope struct {
	Base     float64
	Inverted bool
}

// Command returns the pre-clamp actuator command for the given trim
func (e Envelope) Command(trim float64) float64 {
	raw := e.Base + trim
	if e.Inverted {
		return -raw
	}
	return raw
}

// Saturates reports whether the given trim drives the actuator outside its range
func (e Envelope) Saturates(trim float64) bool {
	return e.Excess(trim) > 0
}

// Excess returns how far the command of the given trim lies outside the actuator range,
// 0 when it is within and +Inf when it is not finite
func (e Envelope) Excess(trim float64) float64 {
	command := e.Command(trim)
	switch {
	case !util.IsFinite(command):
		return math.Inf(1)
	case command > MaxDuty:
		return command - MaxDuty
	case command < MinDuty:
		return MinDuty - command
	default:
		return 0
	}
}

// State is the memory of the engine between two computations
type State struct {
	Integrator float64 `json:"integrator"`
	LastError  float64 `json:"lastError"`
	LastTrim   float64 `json:"lastTrim"`
	// filtered derivative term of the last computation
	Derivative float64 `json:"derivative"`
	// whether LastError holds a real measurement
	Primed bool `json:"primed"`
}

type Input struct {
	Target   float64
	Observed float64
	Gains    Gains
	// seconds since the last computation
	Dt       float64
	Envelope Envelope
}

type Flags uint8

const (
	// Skipped signals that dt was not usable, the previous trim was returned
	Skipped Flags = 1 << iota
	// Fault signals invalid input, the previous trim was returned
	Fault
	// IntegratorHeld signals that the integrator was not advanced to prevent windup
	IntegratorHeld
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

type Result struct {
	Trim  float64
	State State
	Flags Flags

	Proportional float64
	Integral     float64
	Derivative   float64
}

// Compute calculates the closed-loop trim for a single step.
// It has no side effects, the caller commits Result.State.
func Compute(state State, input Input) Result {
	if !util.IsFinite(input.Dt) || input.Dt <= 0 {
		return hold(state, Skipped)
	}
	if !util.IsFinite(input.Target) || !util.IsFinite(input.Observed) {
		return hold(state, Fault)
	}

	gains := input.Gains.Sanitized()
	dt := input.Dt

	err := input.Target - input.Observed
	proportional := err * gains.P

	derivative := 0.0
	if state.Primed {
		raw := (err - state.LastError) * gains.D / dt
		derivative = gains.DerivativeFilter*state.Derivative + (1-gains.DerivativeFilter)*raw
	}

	var flags Flags
	integral := 0.0
	if gains.I != 0 {
		candidate := state.Integrator + err*gains.I*dt
		if gains.ILimit > 0 {
			candidate = util.Coerce(candidate, -gains.ILimit, gains.ILimit)
		}
		held := util.FiniteOrZero(state.Integrator)
		integral = candidate
		// a candidate that moves the command back towards the range is always accepted
		fixed := gains.Offset + proportional + derivative
		if input.Envelope.Excess(fixed+candidate) > input.Envelope.Excess(fixed+held) {
			integral = held
			flags |= IntegratorHeld
		}
	}

	trim := gains.Offset + proportional + integral + derivative
	if !util.IsFinite(trim) {
		return hold(state, Fault)
	}

	return Result{
		Trim: trim,
		State: State{
			Integrator: integral,
			LastError:  err,
			LastTrim:   trim,
			Derivative: derivative,
			Primed:     true,
		},
		Flags:        flags,
		Proportional: proportional,
		Integral:     integral,
		Derivative:   derivative,
	}
}

func hold(state State, flags Flags) Result {
	return Result{
		Trim:     state.LastTrim,
		State:    state,
		Flags:    flags,
		Integral: state.Integrator,
	}
}
